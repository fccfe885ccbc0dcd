package memstore

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStore_CheckpointUnion(t *testing.T) {
	Convey("checkpoint is an idempotent union, never a raw append", t, func() {
		s := New()
		ctx := context.Background()
		id, err := s.Create(ctx, "p1", "spec-fill-batch", []string{"a", "b", "c"})
		So(err, ShouldBeNil)

		So(s.Checkpoint(ctx, id, "a", 33), ShouldBeNil)
		// 网络重试重复提交同一条目
		So(s.Checkpoint(ctx, id, "a", 33), ShouldBeNil)
		So(s.Checkpoint(ctx, id, "b", 67), ShouldBeNil)

		jobs, err := s.ListOpen(ctx, "p1")
		So(err, ShouldBeNil)
		So(len(jobs), ShouldEqual, 1)
		So(jobs[0].CompletedItemIDs, ShouldResemble, []string{"a", "b"})
		So(jobs[0].Progress, ShouldEqual, 67)
	})

	Convey("completed ids stay a subset of item ids", t, func() {
		s := New()
		ctx := context.Background()
		id, _ := s.Create(ctx, "p1", "t", []string{"a"})
		So(s.Checkpoint(ctx, id, "ghost", 100), ShouldNotBeNil)
		jobs, _ := s.ListOpen(ctx, "p1")
		So(jobs[0].CompletedItemIDs, ShouldBeEmpty)
	})
}

func TestStore_RetireAndScope(t *testing.T) {
	Convey("retire removes the record and listOpen filters by scope", t, func() {
		s := New()
		ctx := context.Background()
		id1, _ := s.Create(ctx, "p1", "t", []string{"a"})
		_, _ = s.Create(ctx, "p2", "t", []string{"b"})

		jobs, err := s.ListOpen(ctx, "p1")
		So(err, ShouldBeNil)
		So(len(jobs), ShouldEqual, 1)

		So(s.Retire(ctx, id1), ShouldBeNil)
		So(s.Retire(ctx, id1), ShouldNotBeNil)
		jobs, _ = s.ListOpen(ctx, "p1")
		So(jobs, ShouldBeEmpty)
	})
}
