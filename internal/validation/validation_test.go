package validation

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/ritual/internal/model"
)

func intPtr(n int) *int { return &n }

func validGoal() model.GoalInput {
	return model.GoalInput{
		Slug:           "morning-routine",
		Name:           "Morning routine",
		Category:       model.CategorySelfCare,
		CompletionType: model.CompletionIndefinite,
	}
}

func validActivity() model.Activity {
	return model.Activity{
		Slug:       "breathing",
		Name:       "Breathing",
		Type:       model.ActivityTypeGuided,
		Category:   model.CategorySelfCare,
		Recurrence: model.RecurrenceDaily,
		ScheduledTimes: []model.ScheduleEntry{
			{TimeOfDay: "07:30"},
		},
		Steps: []model.Step{
			{Slug: "inhale", Title: "Inhale", Duration: intPtr(4), DurationUnit: model.DurationSeconds},
		},
	}
}

func assertInvalid(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid), "expected ErrInvalid, got %v", err)
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, field, verr.Field)
}

func TestValidateGoalInput(t *testing.T) {
	assert.NoError(t, ValidateGoalInput(validGoal()))

	in := validGoal()
	in.Name = ""
	assertInvalid(t, ValidateGoalInput(in), "name")

	in = validGoal()
	in.Category = "chores"
	assertInvalid(t, ValidateGoalInput(in), "category")

	in = validGoal()
	in.Slug = "Morning Routine"
	assertInvalid(t, ValidateGoalInput(in), "slug")
}

func TestValidateGoalCompletionDate(t *testing.T) {
	g := model.Goal{
		Slug:           "run-a-marathon",
		Name:           "Run a marathon",
		Category:       model.CategoryFitness,
		CompletionType: model.CompletionDatetime,
	}
	assertInvalid(t, ValidateGoal(g), "completionDate")

	date := time.Date(2027, 4, 1, 0, 0, 0, 0, time.UTC)
	g.CompletionDate = &date
	assert.NoError(t, ValidateGoal(g))
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name    string
		rec     model.Recurrence
		entries []model.ScheduleEntry
		wantErr bool
	}{
		{"daily without day", model.RecurrenceDaily, []model.ScheduleEntry{{TimeOfDay: "08:00"}}, false},
		{"daily with day", model.RecurrenceDaily, []model.ScheduleEntry{{TimeOfDay: "08:00", DayOfWeek: intPtr(2)}}, true},
		{"weekly with day", model.RecurrenceWeekly, []model.ScheduleEntry{{TimeOfDay: "08:00", DayOfWeek: intPtr(7)}}, false},
		{"weekly missing day", model.RecurrenceWeekly, []model.ScheduleEntry{{TimeOfDay: "08:00"}}, true},
		{"day out of range", model.RecurrenceWeekly, []model.ScheduleEntry{{TimeOfDay: "08:00", DayOfWeek: intPtr(8)}}, true},
		{"bad time", model.RecurrenceDaily, []model.ScheduleEntry{{TimeOfDay: "8am"}}, true},
		{"unknown recurrence", "monthly", nil, true},
		{"no recurrence", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule("scheduledTimes", tt.rec, tt.entries)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateActivity(t *testing.T) {
	assert.NoError(t, ValidateActivity(validActivity()))

	a := validActivity()
	a.Recurrence = model.RecurrenceWeekly
	assertInvalid(t, ValidateActivity(a), "scheduledTimes")

	a = validActivity()
	a.Type = "HABIT"
	assertInvalid(t, ValidateActivity(a), "type")

	a = validActivity()
	a.Steps = append(a.Steps, a.Steps[0])
	assertInvalid(t, ValidateActivity(a), "steps")

	a = validActivity()
	a.Steps[0].Duration = nil
	assertInvalid(t, ValidateActivity(a), "steps")

	a = validActivity()
	a.Type = model.ActivityTypeTask
	assertInvalid(t, ValidateActivity(a), "steps")

	a = validActivity()
	a.UnlockCondition = model.UnlockAfterDays
	assertInvalid(t, ValidateActivity(a), "unlockParams.days")

	a = validActivity()
	a.ReliesOn = []model.ActivityDependency{{Slug: "breathing"}}
	assertInvalid(t, ValidateActivity(a), "reliesOn")

	a = validActivity()
	a.CompletionPrompts = []model.CompletionPrompt{
		{Slug: "mood", Question: "Mood?", AnswerType: model.AnswerSelect},
	}
	assertInvalid(t, ValidateActivity(a), "completionPrompts")
}

func TestValidateLog(t *testing.T) {
	activity := validActivity()
	activity.CompletionPrompts = []model.CompletionPrompt{
		{ID: "p1", Slug: "minutes", Question: "How long?", AnswerType: model.AnswerNumber, Required: true},
	}
	base := model.LogBase{UserID: "u1", GoalID: "g1"}

	assertInvalid(t, ValidateLog(&model.ActivityLog{LogBase: model.LogBase{GoalID: "g1"}, ActivityID: "a1"}, nil), "userId")
	assert.NoError(t, ValidateLog(&model.ActivityLog{LogBase: base, ActivityID: "a1"}, nil))

	answer := &model.PromptLog{LogBase: base, ActivityID: "a1", PromptID: "p1", AnswerType: model.AnswerNumber, Answer: model.NumberAnswer(12)}
	assert.NoError(t, ValidateLog(answer, &activity))

	answer.Answer = model.StringAnswer("twelve")
	assertInvalid(t, ValidateLog(answer, &activity), "answer")

	answer.PromptID = "missing"
	assertInvalid(t, ValidateLog(answer, &activity), "promptId")

	assertInvalid(t, ValidateLog(&model.MediaUploadLog{LogBase: base}, nil), "media.url")
	assertInvalid(t, ValidateLog(&model.FeedbackLog{LogBase: base, AuthorType: "bot", Feedback: "hi"}, nil), "authorType")
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	_, header, err := req.FormFile("file")
	require.NoError(t, err)
	return header
}

func TestValidateFile(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

	kind, err := ValidateFile(fileHeader(t, "progress.png", png), ImageConstraints, DocumentConstraints)
	require.NoError(t, err)
	assert.Equal(t, "image", kind)

	_, err = ValidateFile(fileHeader(t, "progress.pdf", png), ImageConstraints)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = ValidateFile(fileHeader(t, "notes.png", []byte("plain text")), ImageConstraints)
	assert.ErrorIs(t, err, ErrInvalid)
}
