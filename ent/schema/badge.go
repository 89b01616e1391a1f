package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Badge is issued once per learner per finished course.
type Badge struct {
	ent.Schema
}

func (Badge) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("UUID"),
		field.String("user_id").
			NotEmpty(),
		field.String("course_id").
			NotEmpty(),
		field.String("course_name"),
		field.String("badge_name"),
		field.String("description").
			Default(""),
		field.String("icon").
			Default(""),
		field.String("color").
			Default(""),
		field.String("verification_id").
			Unique(),
		field.Time("issued_at").
			Default(time.Now),
	}
}

func (Badge) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "course_id").Unique(),
		index.Fields("user_id"),
	}
}
