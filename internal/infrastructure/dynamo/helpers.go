package dynamo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts field->value maps into a DynamoDB update expression
// with a SET clause for set and an ADD clause for add. Keys are sorted so the
// placeholders are deterministic.
func buildUpdateExpr(set, add map[string]interface{}) (*updateExpr, error) {
	ue := &updateExpr{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}
	i := 0
	clause := func(verb, sep string, fields map[string]interface{}) (string, error) {
		if len(fields) == 0 {
			return "", nil
		}
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			nameKey := fmt.Sprintf("#f%d", i)
			valueKey := fmt.Sprintf(":v%d", i)
			av, err := attributevalue.Marshal(fields[k])
			if err != nil {
				return "", fmt.Errorf("marshal field %s: %w", k, err)
			}
			ue.Names[nameKey] = k
			ue.Values[valueKey] = av
			parts = append(parts, nameKey+sep+valueKey)
			i++
		}
		return verb + " " + strings.Join(parts, ", "), nil
	}

	setClause, err := clause("SET", " = ", set)
	if err != nil {
		return nil, err
	}
	addClause, err := clause("ADD", " ", add)
	if err != nil {
		return nil, err
	}
	if i == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	ue.Expr = strings.TrimSpace(setClause + " " + addClause)
	return ue, nil
}
