package jetstream

import (
	"slices"

	"github.com/nats-io/nats.go"
)

// streamConfigEqual reports whether the settings this service manages match.
func streamConfigEqual(a, b nats.StreamConfig) bool {
	return a.Name == b.Name &&
		a.Retention == b.Retention &&
		a.MaxMsgs == b.MaxMsgs &&
		a.MaxAge == b.MaxAge &&
		a.Storage == b.Storage &&
		slices.Equal(a.Subjects, b.Subjects)
}

func consumerConfigEqual(a, b nats.ConsumerConfig) bool {
	return a.Durable == b.Durable &&
		a.AckPolicy == b.AckPolicy &&
		a.DeliverGroup == b.DeliverGroup &&
		a.MaxDeliver == b.MaxDeliver &&
		slices.Equal(a.FilterSubjects, b.FilterSubjects)
}
