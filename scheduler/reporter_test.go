package scheduler

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/mock/gomock"

	"github.com/castpipe/batchrun-go/client"
	"github.com/castpipe/batchrun-go/mocks"
)

type fakeLister struct{ items []Running }

func (f fakeLister) ListRunning(ctx context.Context) ([]Running, error) { return f.items, nil }

func TestProgressReporter(t *testing.T) {
	Convey("reporter should call ReportProgress for running jobs", t, func() {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		api := mocks.NewMockJobStoreAPI(ctrl)
		// 期待对两个运行中任务进行上报
		api.EXPECT().ReportProgress(gomock.Any(), "127.0.0.1:7700", gomock.AssignableToTypeOf(client.ProgressReportReq{})).Times(2)

		l := fakeLister{items: []Running{
			{JobID: "job-1", Type: "portrait-batch", Scope: "p1", Done: 1, Total: 4, Progress: 25},
			{JobID: "job-2", Type: "costume-batch", Scope: "p1", Done: 3, Total: 3, Progress: 100},
		}}
		rep := NewReporter(api, "127.0.0.1:7700", l, "castpipe-editor", 1)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rep.Start(ctx)
		time.Sleep(1200 * time.Millisecond)
		So(true, ShouldBeTrue)
	})
}
