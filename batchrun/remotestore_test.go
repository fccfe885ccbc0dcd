package batchrun

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/castpipe/batchrun-go/client"
)

func TestRemoteStore_MalformedPayloadRetiredOnResume(t *testing.T) {
	Convey("a malformed persisted input resumes as a zero-item job", t, func() {
		var mu sync.Mutex
		retired := []string{}
		mux := http.NewServeMux()
		mux.HandleFunc("/job/listOpen", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(client.OpenJobsResp{Jobs: []client.OpenJob{
				{ID: "job-corrupt", Type: "corrupt-batch", Input: "{{{ not json", Output: ""},
			}})
		})
		mux.HandleFunc("/job/retire", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				JobID string `json:"jobId"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			retired = append(retired, body.JobID)
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		})
		ts := httptest.NewServer(mux)
		defer ts.Close()
		host := ts.Listener.Addr().String()

		log := &execLog{}
		registerOK("corrupt-batch", log)
		o := New(WithScope("p1"), WithServerAddr(host), WithStoreAPI(client.NewHTTPJobStoreAPI()))
		o.Resume(context.Background())

		// 零条目任务：立即清退，执行器零调用
		mu.Lock()
		defer mu.Unlock()
		So(retired, ShouldResemble, []string{"job-corrupt"})
		So(log.list(), ShouldBeEmpty)
		So(o.IsRunning("corrupt-batch", "p1"), ShouldBeFalse)
	})
}

func TestRemoteStore_RoundTrip(t *testing.T) {
	Convey("create/checkpoint/retire go over the wire as specified", t, func() {
		var mu sync.Mutex
		checkpoints := []client.CheckpointReq{}
		retires := 0
		mux := http.NewServeMux()
		mux.HandleFunc("/job/create", func(w http.ResponseWriter, r *http.Request) {
			var req client.CreateJobReq
			_ = json.NewDecoder(r.Body).Decode(&req)
			var resp client.CreateJobResp
			resp.Job.ID = "job-wire"
			_ = json.NewEncoder(w).Encode(resp)
		})
		mux.HandleFunc("/job/checkpoint", func(w http.ResponseWriter, r *http.Request) {
			var req client.CheckpointReq
			_ = json.NewDecoder(r.Body).Decode(&req)
			mu.Lock()
			checkpoints = append(checkpoints, req)
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		})
		mux.HandleFunc("/job/retire", func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			retires++
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		})
		ts := httptest.NewServer(mux)
		defer ts.Close()
		host := ts.Listener.Addr().String()

		log := &execLog{}
		registerOK("wire-batch", log)
		o := New(WithScope("p1"), WithServerAddr(host), WithStoreAPI(client.NewHTTPJobStoreAPI()))

		jobID, err := o.StartBatchTask(context.Background(), "wire-batch", "p1", items("a", "b"))
		So(err, ShouldBeNil)
		So(jobID, ShouldEqual, "job-wire")
		_, ok := waitEnd(o, jobID)
		So(ok, ShouldBeTrue)

		mu.Lock()
		defer mu.Unlock()
		So(len(checkpoints), ShouldEqual, 2)
		So(checkpoints[0].CompletedItemID, ShouldEqual, "a")
		So(checkpoints[0].Progress, ShouldEqual, 50)
		So(checkpoints[1].CompletedItemID, ShouldEqual, "b")
		So(checkpoints[1].Progress, ShouldEqual, 100)
		So(retires, ShouldEqual, 1)
	})
}
