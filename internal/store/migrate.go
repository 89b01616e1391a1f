package store

import (
	"fmt"
	"reflect"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/skilltrack/ent/schema"
)

// Table names.
const (
	TrackersTable       = "trackers"
	BadgesTable         = "badges"
	EnrollmentsTable    = "enrollments"
	CourseProgressTable = "course_progresses"
	LLMRequestsTable    = "llm_request_events"
)

var definitions = []struct {
	table  string
	schema ent.Interface
}{
	{TrackersTable, entschema.Tracker{}},
	{BadgesTable, entschema.Badge{}},
	{EnrollmentsTable, entschema.Enrollment{}},
	{CourseProgressTable, entschema.CourseProgress{}},
	{LLMRequestsTable, entschema.LLMRequestEvent{}},
}

// Tables returns the migration tables described by the ent schemas.
func Tables() []*schema.Table {
	tables := make([]*schema.Table, 0, len(definitions))
	for _, d := range definitions {
		tables = append(tables, tableFor(d.table, d.schema))
	}
	return tables
}

// tableFor lays out a table the way ent's code generator would: mixin
// fields first, an auto-increment "id" unless the schema declares one,
// and one index per schema index.
func tableFor(name string, s ent.Interface) *schema.Table {
	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	t := schema.NewTable(name)
	var own *field.Descriptor
	for _, f := range fields {
		if d := f.Descriptor(); d.Name == "id" {
			own = d
		}
	}
	if own != nil {
		t.AddPrimary(columnFor(own))
	} else {
		t.AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt, Increment: true})
	}
	for _, f := range fields {
		d := f.Descriptor()
		if d.Name == "id" {
			continue
		}
		t.AddColumn(columnFor(d))
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		t.AddIndex(indexName(name, d.Fields), d.Unique, d.Fields)
	}
	return t
}

func columnFor(d *field.Descriptor) *schema.Column {
	c := &schema.Column{
		Name:     d.Name,
		Type:     d.Info.Type,
		Size:     int64(d.Size),
		Unique:   d.Unique,
		Nullable: d.Optional,
		Comment:  d.Comment,
	}
	if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
		c.Default = d.Default
	}
	return c
}

func indexName(table string, fields []string) string {
	return fmt.Sprintf("%s_%s", table, strings.Join(fields, "_"))
}
