package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Enrollment is a paid course enrollment. Trackers are gated on having one.
type Enrollment struct {
	ent.Schema
}

func (Enrollment) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").
			NotEmpty(),
		field.String("course_id").
			NotEmpty(),
		field.String("course_name").
			Default(""),
		field.Time("enrolled_at").
			Default(time.Now),
	}
}

func (Enrollment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "course_id").Unique(),
	}
}

// CourseProgress tracks how far a learner is through a course.
type CourseProgress struct {
	ent.Schema
}

func (CourseProgress) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").
			NotEmpty(),
		field.String("course_id").
			NotEmpty(),
		field.String("course_name").
			Default(""),
		field.Int("progress").
			Default(0).
			Comment("Percent complete, 0..100"),
		field.Time("completed_at").
			Optional().
			Nillable(),
	}
}

func (CourseProgress) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "course_id").Unique(),
	}
}
