package messaging

import (
	"strings"
	"testing"
)

func TestSubjectConstants(t *testing.T) {
	// Subjects follow the {domain}.{resource} convention
	subjects := []string{
		SubjectEventsDomain,
		SubjectWebsocketDelivery,
	}

	for _, s := range subjects {
		if s == "" {
			t.Error("subject constant must not be empty")
		}
		if strings.Contains(s, " ") {
			t.Errorf("subject %q must not contain spaces", s)
		}
		if !strings.Contains(s, ".") {
			t.Errorf("subject %q should follow domain.resource pattern", s)
		}
	}
}

func TestSubjectEventsDomainAll(t *testing.T) {
	if !strings.HasPrefix(SubjectEventsDomainAll, SubjectEventsDomain+".") {
		t.Errorf("wildcard %q must extend %q", SubjectEventsDomainAll, SubjectEventsDomain)
	}
	if !strings.HasSuffix(SubjectEventsDomainAll, ">") {
		t.Errorf("wildcard %q must end with >", SubjectEventsDomainAll)
	}
}

func TestDomainEventSubject(t *testing.T) {
	tests := []struct {
		eventType string
		want      string
	}{
		{"VideoWasCreated", "events.domain.VideoWasCreated"},
		{"UserProfileWasChanged", "events.domain.UserProfileWasChanged"},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			if got := DomainEventSubject(tt.eventType); got != tt.want {
				t.Errorf("DomainEventSubject(%q) = %q, want %q", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestQueueGroupConstants(t *testing.T) {
	if QueueRelayWorkers == "" {
		t.Error("queue group must not be empty")
	}
	if strings.Contains(QueueRelayWorkers, ".") {
		t.Errorf("queue group %q should not contain dots", QueueRelayWorkers)
	}
}
