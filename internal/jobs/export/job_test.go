package export

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

type dashboardStub struct {
	view model.DashboardView
	err  error
	got  enums.TimeRange
}

func (d *dashboardStub) GetModerationDashboard(_ context.Context, tr enums.TimeRange) (model.DashboardView, error) {
	d.got = tr
	return d.view, d.err
}

type uploaderStub struct {
	objects map[string][]byte
}

func (u *uploaderStub) PutJSON(_ context.Context, key string, body []byte) error {
	if u.objects == nil {
		u.objects = map[string][]byte{}
	}
	u.objects[key] = body
	return nil
}

func TestRunUploadsDailySnapshot(t *testing.T) {
	dash := &dashboardStub{view: model.DashboardView{TimeRange: "24h", Overview: model.DashboardOverview{TotalReports: 7}}}
	up := &uploaderStub{}
	job := New(dash, up, "", nil)
	job.now = func() time.Time { return time.Date(2024, time.March, 2, 23, 59, 0, 0, time.UTC) }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if dash.got != enums.TimeRange24h {
		t.Fatalf("expected 24h range, got %+v", dash.got)
	}
	body, ok := up.objects["dashboards/2024-03-02/24h.json"]
	if !ok {
		t.Fatalf("snapshot not uploaded under expected key: %v", up.objects)
	}
	var decoded model.DashboardView
	if err := json.Unmarshal(body, &decoded); err != nil || decoded.Overview.TotalReports != 7 {
		t.Fatalf("unexpected snapshot body: %s (%v)", body, err)
	}
}

func TestRunPropagatesDashboardError(t *testing.T) {
	job := New(&dashboardStub{err: errors.New("db down")}, &uploaderStub{}, "snap", nil)
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	job := New(&dashboardStub{}, &uploaderStub{}, "", nil)
	if err := job.Schedule(context.Background(), "not a cron spec"); err == nil {
		t.Fatalf("expected schedule parse error")
	}
}
