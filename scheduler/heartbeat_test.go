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

func TestHeartbeatScheduler(t *testing.T) {
	Convey("heartbeat should call API at least once", t, func() {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		api := mocks.NewMockJobStoreAPI(ctrl)

		// 预期至少一次 Heartbeat 调用
		api.EXPECT().Heartbeat(gomock.Any(), "127.0.0.1:7700", gomock.AssignableToTypeOf(client.WorkerHeartbeat{})).MinTimes(1)

		hb := NewHeartbeat(api, "127.0.0.1:7700", "castpipe-editor", 1)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		hb.Start(ctx)

		time.Sleep(1200 * time.Millisecond)
		So(true, ShouldBeTrue)
	})
}
