package repository

// WithRecordID filters by the "id" column.
func WithRecordID(id string) Option {
	return WithCondition("id", id)
}

// WithRecordIDIn filters by the "id" column using IN.
func WithRecordIDIn(ids []string) Option {
	return WithConditionIn("id", ids)
}

// WithQuestion filters by the "question" column.
func WithQuestion(question string) Option {
	return WithCondition("question", question)
}

// WithNewestFirst orders by creation time, newest first, with insertion
// order as the secondary key.
func WithNewestFirst() Option {
	return func(q Query) Query {
		q = WithOrderDesc("created_at")(q)
		return WithOrderDesc("seq")(q)
	}
}

// WithInsertionOrder orders by the monotonically increasing insertion
// sequence column.
func WithInsertionOrder() Option {
	return WithOrderAsc("seq")
}
