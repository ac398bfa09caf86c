// Package main implements kudu-prune, a diagnostic tool that shows which
// partition key ranges a scan would visit for a given table descriptor and
// predicate set. It runs the same pruning code the scanner uses, so its
// output is exactly the set of tablets a scan would touch.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramsamdam/kudu/internal/pruner"
	"github.com/ramsamdam/kudu/pkg/types"
)

func main() {
	root := &cobra.Command{
		Use:   "kudu-prune",
		Short: "Show the partition key ranges a scan would visit",
		Long: `kudu-prune loads a YAML table descriptor, applies the given column
predicates and scan bounds, and prints the resulting partition key ranges.

Predicates take the forms "col=value", "col>=value", and "col<value".
Bounds are hex-encoded partition keys.`,
		Args: cobra.NoArgs,
		RunE: run,
	}

	root.Flags().StringP("descriptor", "d", "", "path to the YAML table descriptor (required)")
	root.Flags().StringArrayP("predicate", "p", nil, "column predicate, repeatable")
	root.Flags().String("lower-partition-key", "", "inclusive partition key lower bound, hex")
	root.Flags().String("upper-partition-key", "", "exclusive partition key upper bound, hex")
	if err := root.MarkFlagRequired("descriptor"); err != nil {
		log.Fatalf("Failed to configure flags: %v", err)
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	descriptorPath, _ := cmd.Flags().GetString("descriptor")
	predicateSpecs, _ := cmd.Flags().GetStringArray("predicate")
	lowerHex, _ := cmd.Flags().GetString("lower-partition-key")
	upperHex, _ := cmd.Flags().GetString("upper-partition-key")

	desc, err := types.LoadTableDescriptor(descriptorPath)
	if err != nil {
		return err
	}
	schema, partSchema, err := desc.Resolve()
	if err != nil {
		return err
	}
	tableID, err := desc.TableID()
	if err != nil {
		return err
	}

	predicates, err := parsePredicates(schema, predicateSpecs)
	if err != nil {
		return err
	}

	lowerBound, err := parseHexKey(lowerHex)
	if err != nil {
		return fmt.Errorf("invalid --lower-partition-key: %w", err)
	}
	upperBound, err := parseHexKey(upperHex)
	if err != nil {
		return fmt.Errorf("invalid --upper-partition-key: %w", err)
	}

	p, err := pruner.New(pruner.Config{
		Schema:                 schema,
		PartitionSchema:        partSchema,
		Predicates:             predicates,
		LowerBoundPartitionKey: lowerBound,
		UpperBoundPartitionKey: upperBound,
	})
	if err != nil {
		return err
	}

	log.Printf("Table %q (%s): %d hash component(s), %d range column(s)",
		desc.Name, tableID, len(partSchema.HashSchemas), len(partSchema.RangeSchema.ColumnIDs))
	log.Printf("Scan requires %d partition key range(s)", p.NumRanges())

	for p.HasMorePartitionKeyRanges() {
		r := p.NextPartitionKeyRange()
		fmt.Printf("[%s, %s)\n", formatKey(r.Lower), formatKey(r.Upper))
		if len(r.Upper) == 0 {
			break
		}
		p.RemovePartitionKeyRange(r.Upper)
	}
	return nil
}

// parsePredicates turns "col=value" style specs into predicates keyed by
// column name.
func parsePredicates(schema *types.Schema, specs []string) (map[string]*types.Predicate, error) {
	predicates := make(map[string]*types.Predicate, len(specs))
	for _, spec := range specs {
		name, op, valueText, err := splitPredicate(spec)
		if err != nil {
			return nil, err
		}
		idx, err := schema.ColumnIndexByName(name)
		if err != nil {
			return nil, fmt.Errorf("predicate %q: %w", spec, err)
		}
		col := schema.ColumnByIndex(idx)

		value, err := parseValue(col.Type, valueText)
		if err != nil {
			return nil, fmt.Errorf("predicate %q: %w", spec, err)
		}

		var pred *types.Predicate
		switch op {
		case "=":
			pred, err = types.NewEqualityPredicate(col, value)
		case ">=":
			pred, err = types.NewRangePredicate(col, value, nil)
		case "<":
			pred, err = types.NewRangePredicate(col, nil, value)
		default:
			err = fmt.Errorf("unsupported operator %q", op)
		}
		if err != nil {
			return nil, fmt.Errorf("predicate %q: %w", spec, err)
		}

		if existing, ok := predicates[col.Name]; ok {
			merged, err := mergeRange(col, existing, pred)
			if err != nil {
				return nil, fmt.Errorf("predicate %q: %w", spec, err)
			}
			pred = merged
		}
		predicates[col.Name] = pred
	}
	return predicates, nil
}

// mergeRange combines two predicates on the same column. Only the
// lower+upper range pair is supported; anything else is a conflict.
func mergeRange(col types.ColumnSchema, a, b *types.Predicate) (*types.Predicate, error) {
	if a.Kind != types.PredicateRange || b.Kind != types.PredicateRange {
		return nil, fmt.Errorf("column %q has conflicting predicates", col.Name)
	}
	if (a.Lower != nil && b.Lower != nil) || (a.Upper != nil && b.Upper != nil) {
		return nil, fmt.Errorf("column %q has conflicting predicates", col.Name)
	}
	merged := &types.Predicate{Column: col.Name, Kind: types.PredicateRange}
	merged.Lower = a.Lower
	if merged.Lower == nil {
		merged.Lower = b.Lower
	}
	merged.Upper = a.Upper
	if merged.Upper == nil {
		merged.Upper = b.Upper
	}
	return merged, nil
}

func splitPredicate(spec string) (name, op, value string, err error) {
	for _, candidate := range []string{">=", "<", "="} {
		if i := strings.Index(spec, candidate); i > 0 {
			return strings.TrimSpace(spec[:i]), candidate,
				strings.TrimSpace(spec[i+len(candidate):]), nil
		}
	}
	return "", "", "", fmt.Errorf("predicate %q: expected col=value, col>=value, or col<value", spec)
}

func parseValue(t types.ColumnType, text string) (interface{}, error) {
	switch t {
	case types.TypeInt8, types.TypeInt16, types.TypeInt32, types.TypeInt64:
		var v int64
		if _, err := fmt.Sscanf(text, "%d", &v); err != nil {
			return nil, fmt.Errorf("invalid integer %q", text)
		}
		return v, nil
	case types.TypeBool:
		switch text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("invalid bool %q", text)
	case types.TypeFloat32, types.TypeFloat64:
		var v float64
		if _, err := fmt.Sscanf(text, "%g", &v); err != nil {
			return nil, fmt.Errorf("invalid float %q", text)
		}
		return v, nil
	case types.TypeString:
		return text, nil
	case types.TypeBinary:
		raw, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("binary values are hex-encoded: %w", err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported column type %s", t)
	}
}

func parseHexKey(text string) ([]byte, error) {
	if text == "" {
		return nil, nil
	}
	return hex.DecodeString(text)
}

func formatKey(k []byte) string {
	if len(k) == 0 {
		return "<unbounded>"
	}
	return hex.EncodeToString(k)
}
