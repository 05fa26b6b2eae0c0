package parquet_accumulator

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

type (
	ParquetSchemaAccumulator struct {
		schema ParquetSchema
		// source column name -> parquet field name
		fieldNames map[string]string
	}

	ParquetSchema struct {
		TagStructs SchemaTag        `json:"-,omitempty"`
		Fields     []*ParquetSchema `json:",omitempty"`
	}

	ParquetJSONSchema struct {
		Tag    string               `json:",omitempty"`
		Fields []*ParquetJSONSchema `json:",omitempty"`
	}

	SchemaTag struct {
		Name           string         `json:"name,omitempty"`
		Type           string         `json:"type,omitempty"`
		ConvertedType  string         `json:"convertedtype,omitempty"`
		RepetitionType RepetitionType `json:"repetitiontype,omitempty"`
		Encoding       string         `json:"encoding,omitempty"`
	}

	RepetitionType string
)

var (
	Optional RepetitionType = "OPTIONAL"
	Required RepetitionType = "REQUIRED"
)

func NewParquetAccumulator() ParquetSchemaAccumulator {
	return ParquetSchemaAccumulator{
		schema: ParquetSchema{
			TagStructs: SchemaTag{
				Name:           "parquet_go_root",
				RepetitionType: Required,
			},
		},
		fieldNames: map[string]string{},
	}
}

// WriteRow accumulates the schema of one row. cols and vals line up; columns
// keep the order they were first seen in. A nil value says nothing about a
// column's type, so the column waits for a row that has one.
func (pa *ParquetSchemaAccumulator) WriteRow(cols []string, vals []any) {
	for i, col := range cols {
		if i >= len(vals) || vals[i] == nil {
			continue
		}
		if _, exists := pa.fieldNames[col]; exists {
			continue
		}
		name := pa.uniqueFieldName(col)
		rowSchema := pa.getParquetSchema(name, vals[i])
		if rowSchema != nil {
			pa.fieldNames[col] = name
			pa.schema.Fields = append(pa.schema.Fields, rowSchema)
		}
	}
}

// FieldName returns the parquet field a source column was written as.
func (pa *ParquetSchemaAccumulator) FieldName(col string) (string, bool) {
	name, ok := pa.fieldNames[col]
	return name, ok
}

// SanitizeName turns a column header like "Urban population (% of total)"
// into an exported identifier like "UrbanPopulationOfTotal".
func SanitizeName(col string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range col {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		b.WriteRune(r)
	}
	name := b.String()
	if name == "" {
		return "Col"
	}
	if unicode.IsDigit(rune(name[0])) {
		return "C" + name
	}
	return name
}

func (pa *ParquetSchemaAccumulator) uniqueFieldName(col string) string {
	base := SanitizeName(col)
	name := base
	for i := 2; pa.fieldExists(name); i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	return name
}

// getParquetSchema builds the field for a sample value of the column
func (pa *ParquetSchemaAccumulator) getParquetSchema(name string, item any) *ParquetSchema {
	schema := &ParquetSchema{
		TagStructs: SchemaTag{
			Name:           name,
			RepetitionType: Optional,
		},
	}
	reflectType := reflect.TypeOf(item)
	if reflectType.Kind() == reflect.Ptr {
		val := reflect.ValueOf(item)
		if val.IsNil() {
			return nil
		}
		item = val.Elem().Interface()
		reflectType = reflectType.Elem()
	}

	switch reflectType.Kind() {
	case reflect.Slice:
		val := reflect.ValueOf(item)
		var nonNilVal any
		for i := 0; i < val.Len(); i++ {
			if elem := val.Index(i).Interface(); elem != nil {
				nonNilVal = elem
				break
			}
		}
		if nonNilVal == nil {
			return nil
		}
		elem := pa.getParquetSchema("Element", nonNilVal)
		if elem == nil {
			return nil
		}
		schema.TagStructs.Type = "LIST"
		schema.Fields = append(schema.Fields, elem)
	case reflect.String:
		schema.TagStructs.Type = "BYTE_ARRAY"
		schema.TagStructs.ConvertedType = "UTF8"
		schema.TagStructs.Encoding = "PLAIN"
	case reflect.Bool:
		schema.TagStructs.Type = "BOOLEAN"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		schema.TagStructs.Type = "INT64"
	default:
		schema.TagStructs.Type = "DOUBLE"
	}

	return schema
}

func (pa *ParquetSchemaAccumulator) fieldExists(fieldName string) (exists bool) {
	for _, field := range pa.schema.Fields {
		if field.TagStructs.Name == fieldName {
			return true
		}
	}
	return
}

func (pa *ParquetSchemaAccumulator) GetColumnNames() []string {
	var cols []string
	for _, field := range pa.schema.Fields {
		cols = append(cols, field.TagStructs.Name)
	}
	return cols
}

func (ps *ParquetSchema) GetType() string {
	switch ps.TagStructs.Type {
	case "BYTE_ARRAY":
		return "string"
	case "DOUBLE":
		return "float"
	case "INT64":
		return "int"
	case "BOOLEAN":
		return "bool"
	case "LIST":
		return fmt.Sprintf("list(%s)", ps.Fields[0].GetType())
	default:
		return "unknown"
	}
}

// GetColumnTypes returns the types of columns in the same order: `string`, `float`, `int`, `bool`, or `list(x)`
func (pa *ParquetSchemaAccumulator) GetColumnTypes() []string {
	var cols []string
	for _, field := range pa.schema.Fields {
		cols = append(cols, field.GetType())
	}
	return cols
}

// ToParquetJSONSchema recursively converts
func (ps *ParquetSchema) ToParquetJSONSchema() *ParquetJSONSchema {
	var tagArr []string
	if ps.TagStructs.Type != "" {
		tagArr = append(tagArr, "type="+ps.TagStructs.Type)
	}
	if ps.TagStructs.ConvertedType != "" {
		tagArr = append(tagArr, "convertedtype="+ps.TagStructs.ConvertedType)
	}
	if ps.TagStructs.Encoding != "" {
		tagArr = append(tagArr, "encoding="+ps.TagStructs.Encoding)
	}
	if ps.TagStructs.Name != "" {
		tagArr = append(tagArr, "name="+ps.TagStructs.Name)
	}
	if string(ps.TagStructs.RepetitionType) != "" {
		tagArr = append(tagArr, "repetitiontype="+string(ps.TagStructs.RepetitionType))
	}
	var fields []*ParquetJSONSchema
	for _, field := range ps.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	return &ParquetJSONSchema{
		Tag:    strings.Join(tagArr, ", "),
		Fields: fields,
	}
}

// GetSchemaString returns the JSON formatted schema string
func (pa *ParquetSchemaAccumulator) GetSchemaString() (string, error) {
	var fields []*ParquetJSONSchema
	for _, field := range pa.schema.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	pjs := ParquetJSONSchema{
		Tag:    "name=parquet_go_root, repetitiontype=REQUIRED",
		Fields: fields,
	}

	b, err := json.Marshal(pjs)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}
