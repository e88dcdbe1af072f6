package resources

import (
	"context"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
)

// SchedulesResource provides access to schedule operations.
type SchedulesResource struct {
	base *Base
}

// NewSchedulesResource creates a new SchedulesResource.
func NewSchedulesResource(transport *httpx.Transport) *SchedulesResource {
	return &SchedulesResource{base: NewBase(transport)}
}

// Schedule represents a recurring publish.
type Schedule struct {
	ID          string              `json:"scheduleId"`
	Cron        string              `json:"cron"`
	Destination string              `json:"destination"`
	Method      string              `json:"method"`
	Header      map[string][]string `json:"header,omitempty"`
	Body        string              `json:"body,omitempty"`
	Retries     *int                `json:"retries,omitempty"`
	Delay       *int                `json:"delay,omitempty"`
	Callback    string              `json:"callback,omitempty"`
	IsPaused    bool                `json:"isPaused,omitempty"`
	CreatedAt   int64               `json:"createdAt"`
}

// CreateScheduleRequest is the request to create a schedule.
type CreateScheduleRequest struct {
	Destination string
	Cron        string
	Body        []byte
	// ScheduleID, when set, updates the existing schedule with that id.
	ScheduleID string
	Options    *PublishOptions
}

// CreateScheduleResponse is the response from creating a schedule.
type CreateScheduleResponse struct {
	ScheduleID string `json:"scheduleId"`
}

// Create creates or updates a schedule.
func (r *SchedulesResource) Create(ctx context.Context, req *CreateScheduleRequest) (*CreateScheduleResponse, error) {
	if req == nil {
		req = &CreateScheduleRequest{}
	}
	dest, err := checkDestination(req.Destination)
	if err != nil {
		return nil, err
	}
	headers := req.Options.Header()
	if req.Cron != "" {
		headers.Set("Upstash-Cron", req.Cron)
	}
	if req.ScheduleID != "" {
		headers.Set("Upstash-Schedule-Id", req.ScheduleID)
	}

	var result CreateScheduleResponse
	if err := r.base.PostRaw(ctx, "/v2/schedules/"+dest, req.Body, headers, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get retrieves a schedule by id.
func (r *SchedulesResource) Get(ctx context.Context, id string) (*Schedule, error) {
	path, err := route("/v2/schedules", "scheduleId", id)
	if err != nil {
		return nil, err
	}
	var result Schedule
	if err := r.base.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// List retrieves all schedules.
func (r *SchedulesResource) List(ctx context.Context) ([]Schedule, error) {
	var result []Schedule
	if err := r.base.Get(ctx, "/v2/schedules", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Remove deletes a schedule.
func (r *SchedulesResource) Remove(ctx context.Context, id string) error {
	path, err := route("/v2/schedules", "scheduleId", id)
	if err != nil {
		return err
	}
	return r.base.Delete(ctx, path)
}

// Pause pauses a schedule.
func (r *SchedulesResource) Pause(ctx context.Context, id string) error {
	path, err := route("/v2/schedules", "scheduleId", id, "pause")
	if err != nil {
		return err
	}
	return r.base.Post(ctx, path, nil, nil)
}

// Resume resumes a paused schedule.
func (r *SchedulesResource) Resume(ctx context.Context, id string) error {
	path, err := route("/v2/schedules", "scheduleId", id, "resume")
	if err != nil {
		return err
	}
	return r.base.Post(ctx, path, nil, nil)
}
