package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Tracker stores one learner's roadmap. The full tracker lives in
// document; the other columns are copies kept for listing and stats.
type Tracker struct {
	ent.Schema
}

func (Tracker) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (Tracker) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").
			Unique().
			NotEmpty().
			Comment("Owning learner"),
		field.String("career_goal").
			Comment("Career goal key: frontend, backend, ..."),
		field.Int("overall_progress").
			Default(0),
		field.Bool("is_completed").
			Default(false),
		field.String("verification_id").
			Default(""),
		field.Text("document").
			Comment("JSON-encoded tracker"),
		field.Int64("version").
			Default(1).
			Comment("Optimistic concurrency version"),
	}
}

func (Tracker) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("career_goal"),
		index.Fields("is_completed"),
	}
}
