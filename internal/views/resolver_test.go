package views

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/constructsync/dashboard/internal/models"
)

func ptr(id models.ID) *models.ID { return &id }

func TestResolver(t *testing.T) {
	r := NewResolver(
		[]models.Team{{ID: 1, Name: "Framers"}, {ID: 2}},
		[]models.Worker{{ID: 10, Name: "Sam Lee"}},
		[]models.Job{{ID: 5, Address: "1 Test St"}},
	)

	assert.Equal(t, "Framers", r.TeamLabel(1))
	assert.Equal(t, "Team 2", r.TeamLabel(2), "blank names fall back to the placeholder")
	assert.Equal(t, "Team 99", r.TeamLabel(99))
	assert.Equal(t, "Sam Lee", r.WorkerLabel(10))
	assert.Equal(t, "User 11", r.WorkerLabel(11))
	assert.Equal(t, "1 Test St", r.JobLabel(5))
	assert.Equal(t, "Job 6", r.JobLabel(6))
	assert.Equal(t, []string{"Sam Lee", "User 3"}, r.WorkerLabels([]models.ID{10, 3}))
}

func TestResolver_Assignee(t *testing.T) {
	r := NewResolver([]models.Team{{ID: 1, Name: "Framers"}}, []models.Worker{{ID: 10, Name: "Sam Lee"}}, nil)

	tests := []struct {
		name string
		job  models.Job
		want string
	}{
		{"team", models.Job{TeamID: ptr(1)}, "Framers"},
		{"team wins over user", models.Job{TeamID: ptr(1), AssignedTo: ptr(10)}, "Framers"},
		{"user", models.Job{AssignedTo: ptr(10)}, "Sam Lee"},
		{"unknown team", models.Job{TeamID: ptr(99)}, "Team 99"},
		{"nobody", models.Job{}, Unassigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Assignee(tt.job))
		})
	}
}

func TestResolver_NilBeforeCollectionsLoad(t *testing.T) {
	var r *Resolver
	assert.Equal(t, "Team 4", r.TeamLabel(4))
	assert.Equal(t, "User 4", r.WorkerLabel(4))
	assert.Equal(t, Unassigned, r.Assignee(models.Job{}))
}
