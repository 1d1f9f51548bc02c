package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	recordsTable      = "performance_records"
	adaptationsTable  = "adaptation_events"
	rewardsTable      = "reward_events"
	streakClaimsTable = "streak_claims"
	llmRequestsTable  = "llm_request_events"
	sequenceTable     = "global_sequence"
)

var (
	// RecordsColumns holds the columns for the "performance_records" table.
	RecordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "learner_id", Type: field.TypeString, Unique: true},
		{Name: "version", Type: field.TypeInt64, Default: 1},
		{Name: "format", Type: field.TypeString},
		{Name: "data", Type: field.TypeJSON},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// RecordsTable holds the schema information for the "performance_records" table.
	RecordsTable = &schema.Table{
		Name:       recordsTable,
		Columns:    RecordsColumns,
		PrimaryKey: []*schema.Column{RecordsColumns[0]},
	}

	// AdaptationsColumns holds the columns for the "adaptation_events" table.
	AdaptationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "submission_id", Type: field.TypeString},
		{Name: "score", Type: field.TypeFloat64},
		{Name: "modality", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "rule", Type: field.TypeString},
		{Name: "from_difficulty", Type: field.TypeString},
		{Name: "to_difficulty", Type: field.TypeString},
		{Name: "direction", Type: field.TypeString},
		{Name: "from_tier", Type: field.TypeString},
		{Name: "to_tier", Type: field.TypeString},
		{Name: "trend", Type: field.TypeString},
		{Name: "streak_health", Type: field.TypeString},
		{Name: "reason", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	// AdaptationsTable holds the schema information for the "adaptation_events" table.
	AdaptationsTable = &schema.Table{
		Name:       adaptationsTable,
		Columns:    AdaptationsColumns,
		PrimaryKey: []*schema.Column{AdaptationsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "adaptationevent_learner_id", Columns: []*schema.Column{AdaptationsColumns[2]}},
		},
	}

	// RewardsColumns holds the columns for the "reward_events" table.
	RewardsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "submission_id", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "gem_type", Type: field.TypeString},
		{Name: "rarity", Type: field.TypeString},
		{Name: "xp", Type: field.TypeInt},
		{Name: "milestone", Type: field.TypeInt, Default: 0},
		{Name: "streak", Type: field.TypeInt, Default: 0},
		{Name: "streak_run", Type: field.TypeInt, Default: 0},
		{Name: "reason", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	// RewardsTable holds the schema information for the "reward_events" table.
	RewardsTable = &schema.Table{
		Name:       rewardsTable,
		Columns:    RewardsColumns,
		PrimaryKey: []*schema.Column{RewardsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "rewardevent_learner_id", Columns: []*schema.Column{RewardsColumns[2]}},
		},
	}

	// StreakClaimsColumns holds the columns for the "streak_claims" table.
	StreakClaimsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "streak_run", Type: field.TypeInt},
		{Name: "milestone", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
	}
	// StreakClaimsTable holds the schema information for the "streak_claims"
	// table. A milestone can be claimed once per learner and streak run.
	StreakClaimsTable = &schema.Table{
		Name:       streakClaimsTable,
		Columns:    StreakClaimsColumns,
		PrimaryKey: []*schema.Column{StreakClaimsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "streakclaim_learner_id_streak_run_milestone",
				Unique:  true,
				Columns: []*schema.Column{StreakClaimsColumns[1], StreakClaimsColumns[2], StreakClaimsColumns[3]},
			},
		},
	}

	// LLMRequestsColumns holds the columns for the "llm_request_events" table.
	LLMRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: ""},
		{Name: "response_body", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	// LLMRequestsTable holds the schema information for the "llm_request_events" table.
	LLMRequestsTable = &schema.Table{
		Name:       llmRequestsTable,
		Columns:    LLMRequestsColumns,
		PrimaryKey: []*schema.Column{LLMRequestsColumns[0]},
	}

	// SequenceColumns holds the columns for the single-row "global_sequence" table.
	SequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	// SequenceTable holds the schema information for the "global_sequence" table.
	SequenceTable = &schema.Table{
		Name:       sequenceTable,
		Columns:    SequenceColumns,
		PrimaryKey: []*schema.Column{SequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		RecordsTable,
		AdaptationsTable,
		RewardsTable,
		StreakClaimsTable,
		LLMRequestsTable,
		SequenceTable,
	}
)
