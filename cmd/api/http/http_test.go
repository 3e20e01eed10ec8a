package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	recordhttp "github.com/library-register/cmd/api/http"
	httpmock "github.com/library-register/cmd/api/http/mocks"
	"github.com/library-register/cmd/api/inmemory"
	"github.com/library-register/cmd/api/notifications"
	"github.com/library-register/cmd/api/record"
	"github.com/matryer/is"
	"go.uber.org/mock/gomock"
)

var printedAt = time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

func newServer(t *testing.T, service recordhttp.ServiceAPI, config recordhttp.ServerConfig) (*http.Server, *notifications.Banner) {
	t.Helper()
	banner := notifications.NewBanner(time.Minute)
	t.Cleanup(banner.Close)

	if config.Clock == nil {
		config.Clock = func() time.Time { return printedAt }
	}
	handler, err := recordhttp.NewRecordHandler(service, banner, config)
	if err != nil {
		t.Fatalf("creating record handler: %v", err)
	}
	return recordhttp.NewServer(config, handler), banner
}

func do(server *http.Server, method, target, body string) (*http.Response, string) {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	response := httptest.NewRecorder()
	server.Handler.ServeHTTP(response, request)
	result := response.Result()
	data, _ := io.ReadAll(result.Body)
	return result, string(data)
}

func jsonLine(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshalling expected body: %v", err)
	}
	return string(data) + "\n"
}

func TestCreateRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAPI := httpmock.NewMockServiceAPI(ctrl)
	server, banner := newServer(t, mockAPI, recordhttp.ServerConfig{RequestTimeout: 50 * time.Millisecond})

	t.Run("creates a record without errors", func(t *testing.T) {
		is := is.New(t)

		entry := record.AcquisitionRecord{AcquisitionNumber: "A1", BookTitle: "Dune", StudentName: "Nimal", BorrowDate: "2024-03-01"}
		mockAPI.EXPECT().Submit(gomock.Any(), record.Create(), entry).Return(entry, nil)

		response, body := do(server, http.MethodPost, "/records",
			`{"acquisitionNumber":"A1","bookTitle":"Dune","studentName":"Nimal","borrowDate":"2024-03-01"}`)

		is.Equal(response.StatusCode, http.StatusCreated)
		is.Equal(body, jsonLine(t, entry))

		notices := banner.Current()
		is.True(len(notices) > 0)
		is.Equal(notices[len(notices)-1].Message, "Record A1 saved")
		is.True(notices[len(notices)-1].Success)
	})

	t.Run("expected invalid json error", func(t *testing.T) {
		is := is.New(t)

		invalidEntry := `{
				"acquisitionNumber": "test with missing coma after title",
				"bookTitle": "Dune"
				"publisher": "Chilton"
			}`
		expectedJSONresponse := fmt.Sprintln(`{"error_code":102,"error_message":"invalid json request: invalid character '\"' after object key:value pair"}`)

		response, body := do(server, http.MethodPost, "/records", invalidEntry)

		is.Equal(response.StatusCode, http.StatusBadRequest)
		is.Equal(body, expectedJSONresponse)

		notices := banner.Current()
		is.Equal(notices[len(notices)-1].Message, "invalid json request: invalid character '\"' after object key:value pair")
		is.True(!notices[len(notices)-1].Success)
	})

	t.Run("expected invalid fields error", func(t *testing.T) {
		is := is.New(t)

		entry := record.AcquisitionRecord{BookTitle: "Keyless"}
		mockAPI.EXPECT().Submit(gomock.Any(), record.Create(), entry).
			Return(record.AcquisitionRecord{}, record.NewErrWithCause(record.ErrResponseEntryInvalidFields, errors.New("acquisitionNumber must be filled")))
		expectedJSONresponse := fmt.Sprintln(`{"error_code":100,"error_message":"the form fields are not filled correctly.: acquisitionNumber must be filled"}`)

		response, body := do(server, http.MethodPost, "/records", `{"bookTitle":"Keyless"}`)

		is.Equal(response.StatusCode, http.StatusBadRequest)
		is.Equal(body, expectedJSONresponse)

		notices := banner.Current()
		is.True(!notices[len(notices)-1].Success)
	})

	t.Run("expected duplicate key error", func(t *testing.T) {
		is := is.New(t)

		entry := record.AcquisitionRecord{AcquisitionNumber: "A1"}
		mockAPI.EXPECT().Submit(gomock.Any(), record.Create(), entry).
			Return(record.AcquisitionRecord{}, fmt.Errorf("adding record on db: %w", record.ErrResponseDuplicateKey))

		response, body := do(server, http.MethodPost, "/records", `{"acquisitionNumber":"A1"}`)

		is.Equal(response.StatusCode, http.StatusConflict)
		is.Equal(body, jsonLine(t, record.ErrResponseDuplicateKey))
	})

	t.Run("expected storage failure error without its cause", func(t *testing.T) {
		is := is.New(t)

		entry := record.AcquisitionRecord{AcquisitionNumber: "A9"}
		mockAPI.EXPECT().Submit(gomock.Any(), record.Create(), entry).
			Return(record.AcquisitionRecord{}, record.NewErrStorageFailure(errors.New("disk I/O error")))

		response, body := do(server, http.MethodPost, "/records", `{"acquisitionNumber":"A9"}`)

		is.Equal(response.StatusCode, http.StatusInternalServerError)
		is.Equal(body, jsonLine(t, record.ErrResponseStorageFailure))
	})

	t.Run("expected context timeout error", func(t *testing.T) {
		is := is.New(t)

		entry := record.AcquisitionRecord{AcquisitionNumber: "A2"}
		mockAPI.EXPECT().Submit(gomock.Any(), record.Create(), entry).DoAndReturn(
			func(ctx context.Context, _ record.Mode, _ record.AcquisitionRecord) (record.AcquisitionRecord, error) {
				<-ctx.Done()
				return record.AcquisitionRecord{}, fmt.Errorf("timeout on call to Add: %w", ctx.Err())
			})
		expectedJSONresponse := fmt.Sprintln(`{"error_code":109,"error_message":"context deadline exceeded"}`)

		response, body := do(server, http.MethodPost, "/records", `{"acquisitionNumber":"A2"}`)

		is.Equal(response.StatusCode, http.StatusRequestTimeout)
		is.Equal(body, expectedJSONresponse)
	})

	t.Run("expected method not allowed", func(t *testing.T) {
		is := is.New(t)

		response, _ := do(server, http.MethodPatch, "/records", "")
		is.Equal(response.StatusCode, http.StatusMethodNotAllowed)
	})
}

func TestUpdateRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAPI := httpmock.NewMockServiceAPI(ctrl)
	server, banner := newServer(t, mockAPI, recordhttp.ServerConfig{})

	t.Run("updates a record without errors", func(t *testing.T) {
		is := is.New(t)

		entry := record.AcquisitionRecord{AcquisitionNumber: "A1", BookTitle: "Dune Messiah"}
		mockAPI.EXPECT().Submit(gomock.Any(), record.UpdateOf("A1"), entry).Return(entry, nil)

		response, body := do(server, http.MethodPut, "/records/A1", `{"acquisitionNumber":"A1","bookTitle":"Dune Messiah"}`)

		is.Equal(response.StatusCode, http.StatusOK)
		is.Equal(body, jsonLine(t, entry))
		is.Equal(banner.Current()[0].Message, "Record A1 updated")
	})

	t.Run("an escaped key reaches the service unescaped", func(t *testing.T) {
		is := is.New(t)

		entry := record.AcquisitionRecord{AcquisitionNumber: "2024/17"}
		mockAPI.EXPECT().Submit(gomock.Any(), record.UpdateOf("2024/17"), entry).Return(entry, nil)

		response, _ := do(server, http.MethodPut, "/records/2024%2F17", `{"acquisitionNumber":"2024/17"}`)
		is.Equal(response.StatusCode, http.StatusOK)
	})

	t.Run("expected key mismatch error", func(t *testing.T) {
		is := is.New(t)

		entry := record.AcquisitionRecord{AcquisitionNumber: "B7"}
		mockAPI.EXPECT().Submit(gomock.Any(), record.UpdateOf("A1"), entry).Return(record.AcquisitionRecord{}, record.ErrResponseKeyMismatch)

		response, body := do(server, http.MethodPut, "/records/A1", `{"acquisitionNumber":"B7"}`)

		is.Equal(response.StatusCode, http.StatusBadRequest)
		is.Equal(body, jsonLine(t, record.ErrResponseKeyMismatch))
	})

	t.Run("expected invalid key error", func(t *testing.T) {
		is := is.New(t)

		response, body := do(server, http.MethodPut, "/records/", `{"acquisitionNumber":"A1"}`)

		is.Equal(response.StatusCode, http.StatusBadRequest)
		is.Equal(body, jsonLine(t, record.ErrResponseKeyInvalidFormat))

		notices := banner.Current()
		is.Equal(notices[len(notices)-1].Message, record.ErrResponseKeyInvalidFormat.Message)
		is.True(!notices[len(notices)-1].Success)
	})
}

func TestDeleteRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAPI := httpmock.NewMockServiceAPI(ctrl)
	server, _ := newServer(t, mockAPI, recordhttp.ServerConfig{})

	t.Run("a delete without confirmation does not reach the service", func(t *testing.T) {
		is := is.New(t)

		response, body := do(server, http.MethodDelete, "/records/A1", "")

		is.Equal(response.StatusCode, http.StatusConflict)
		is.Equal(body, jsonLine(t, record.ErrResponseDeleteNotConfirmed))
	})

	t.Run("deletes a confirmed record without errors", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().Delete(gomock.Any(), "A1").Return(nil)

		response, body := do(server, http.MethodDelete, "/records/A1?confirm=true", "")

		is.Equal(response.StatusCode, http.StatusNoContent)
		is.Equal(body, "")
	})
}

func TestGetRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAPI := httpmock.NewMockServiceAPI(ctrl)
	server, _ := newServer(t, mockAPI, recordhttp.ServerConfig{})

	t.Run("gets a record without errors", func(t *testing.T) {
		is := is.New(t)

		found := record.AcquisitionRecord{AcquisitionNumber: "A1", BookTitle: "Dune", Extra: map[string]json.RawMessage{"isbn": json.RawMessage(`"978"`)}}
		mockAPI.EXPECT().Get(gomock.Any(), "A1").Return(found, nil)

		response, body := do(server, http.MethodGet, "/records/A1", "")

		is.Equal(response.StatusCode, http.StatusOK)
		is.Equal(body, jsonLine(t, found))
	})

	t.Run("expected not found error", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().Get(gomock.Any(), "missing").Return(record.AcquisitionRecord{}, fmt.Errorf("searching by acquisition number: %w", record.ErrResponseRecordNotFound))
		expectedJSONresponse := fmt.Sprintln(`{"error_code":101,"error_message":"record not found"}`)

		response, body := do(server, http.MethodGet, "/records/missing", "")

		is.Equal(response.StatusCode, http.StatusNotFound)
		is.Equal(body, expectedJSONresponse)
	})

	t.Run("expected storage unavailable error", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().Get(gomock.Any(), "A1").Return(record.AcquisitionRecord{}, record.NewErrWithCause(record.ErrResponseStorageUnavailable, errors.New("connection refused")))

		response, body := do(server, http.MethodGet, "/records/A1", "")

		is.Equal(response.StatusCode, http.StatusServiceUnavailable)
		is.Equal(body, jsonLine(t, record.ErrResponseStorageUnavailable))
	})
}

func TestListRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAPI := httpmock.NewMockServiceAPI(ctrl)
	server, _ := newServer(t, mockAPI, recordhttp.ServerConfig{})

	stored := []record.AcquisitionRecord{
		{AcquisitionNumber: "A1", BookTitle: "Dune", Price: "500"},
		{AcquisitionNumber: "A2", BookTitle: "Dune Messiah", Price: "90"},
		{AcquisitionNumber: "A3", BookTitle: "Children of Dune", Price: "1200"},
	}

	t.Run("lists the matching records in the asked order", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().Search(gomock.Any(), "dune").Return(stored, nil)

		response, body := do(server, http.MethodGet, "/records?q=dune&sort_by=price&sort_direction=desc", "")

		is.Equal(response.StatusCode, http.StatusOK)
		is.Equal(body, jsonLine(t, recordhttp.ListRecordsResponse{
			Query:   "dune",
			Total:   3,
			Results: []record.AcquisitionRecord{stored[2], stored[0], stored[1]},
		}))
	})

	t.Run("an empty result is an empty list", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().Search(gomock.Any(), "nothing").Return([]record.AcquisitionRecord{}, nil)

		response, body := do(server, http.MethodGet, "/records?q=nothing", "")

		is.Equal(response.StatusCode, http.StatusOK)
		is.Equal(body, fmt.Sprintln(`{"query":"nothing","total":0,"results":[]}`))
	})

	t.Run("expected invalid sort error", func(t *testing.T) {
		is := is.New(t)

		for _, target := range []string{"/records?sort_by=isbn", "/records?sort_direction=up", "/records?sort_by=BookTitle"} {
			response, body := do(server, http.MethodGet, target, "")
			is.Equal(response.StatusCode, http.StatusBadRequest)
			is.Equal(body, jsonLine(t, record.ErrResponseQuerySortByInvalid))
		}
	})
}

func TestSearch(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		t.Fatal(err)
	}
	service := record.NewService(store, 0)
	for _, r := range []record.AcquisitionRecord{
		{AcquisitionNumber: "A1", BookTitle: "Dune"},
		{AcquisitionNumber: "A2", BookTitle: "Dune Messiah"},
		{AcquisitionNumber: "A3", BookTitle: "Foundation"},
	} {
		if err := service.Add(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}
	server, _ := newServer(t, service, recordhttp.ServerConfig{SearchDebounce: 100 * time.Millisecond})

	t.Run("only the last request of a burst gets results", func(t *testing.T) {
		is := is.New(t)

		var wg sync.WaitGroup
		var first *http.Response
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, _ = do(server, http.MethodGet, "/search?q=du&session=s1", "")
		}()
		time.Sleep(20 * time.Millisecond)

		response, body := do(server, http.MethodGet, "/search?q=messiah&session=s1", "")
		wg.Wait()

		is.Equal(first.StatusCode, http.StatusNoContent)
		is.Equal(response.StatusCode, http.StatusOK)

		var list recordhttp.ListRecordsResponse
		is.NoErr(json.Unmarshal([]byte(body), &list))
		is.Equal(list.Total, 1)
		is.Equal(list.Results[0].AcquisitionNumber, "A2")
	})

	t.Run("sessions do not supersede each other", func(t *testing.T) {
		is := is.New(t)

		var wg sync.WaitGroup
		statuses := make([]int, 2)
		for i, session := range []string{"s2", "s3"} {
			wg.Add(1)
			go func(i int, session string) {
				defer wg.Done()
				response, _ := do(server, http.MethodGet, "/search?q=dune&session="+session, "")
				statuses[i] = response.StatusCode
			}(i, session)
		}
		wg.Wait()

		is.Equal(statuses, []int{http.StatusOK, http.StatusOK})
	})

	t.Run("an empty query returns every record in order", func(t *testing.T) {
		is := is.New(t)

		response, body := do(server, http.MethodGet, "/search?session=s4", "")
		is.Equal(response.StatusCode, http.StatusOK)

		var list recordhttp.ListRecordsResponse
		is.NoErr(json.Unmarshal([]byte(body), &list))
		is.Equal(list.Total, 3)
		is.Equal(list.Results[0].AcquisitionNumber, "A1")
		is.Equal(list.Results[2].AcquisitionNumber, "A3")
	})
}

func TestBackup(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAPI := httpmock.NewMockServiceAPI(ctrl)
	server, banner := newServer(t, mockAPI, recordhttp.ServerConfig{})

	t.Run("sends the backup as a dated attachment", func(t *testing.T) {
		is := is.New(t)

		data := []byte("[\n  {\n    \"acquisitionNumber\": \"A1\"\n  }\n]")
		mockAPI.EXPECT().Backup(gomock.Any()).Return(data, nil)

		response, body := do(server, http.MethodGet, "/backup", "")

		is.Equal(response.StatusCode, http.StatusOK)
		is.Equal(response.Header.Get("content-disposition"), `attachment; filename="library_backup_2024-03-01.json"`)
		is.Equal(body, string(data))
		is.Equal(banner.Current()[0].Message, "Backup written to library_backup_2024-03-01.json")
	})
}

func TestRestore(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAPI := httpmock.NewMockServiceAPI(ctrl)
	server, banner := newServer(t, mockAPI, recordhttp.ServerConfig{})

	t.Run("restores a backup atomically when asked", func(t *testing.T) {
		is := is.New(t)

		records := []record.AcquisitionRecord{{AcquisitionNumber: "A1"}}
		mockAPI.EXPECT().Restore(gomock.Any(), records, record.RestoreOptions{Atomic: true}).
			Return(record.RestoreReport{Total: 1, Restored: 1}, nil)

		response, body := do(server, http.MethodPost, "/restore?atomic=true", `[{"acquisitionNumber":"A1"}]`)

		is.Equal(response.StatusCode, http.StatusOK)
		is.Equal(body, fmt.Sprintln(`{"atomic":true,"total":1,"restored":1,"failures":[]}`))
	})

	t.Run("reports the records that could not be restored", func(t *testing.T) {
		is := is.New(t)

		records := []record.AcquisitionRecord{{AcquisitionNumber: "A1"}, {BookTitle: "no key"}}
		failure := record.NewErrStorageFailure(record.ErrMissingKey)
		mockAPI.EXPECT().Restore(gomock.Any(), records, record.RestoreOptions{}).Return(
			record.RestoreReport{Total: 2, Restored: 1, Failures: []record.RestoreFailure{{Err: failure}}},
			record.NewErrWithCause(record.ErrResponseRestoreIncomplete, failure))

		response, body := do(server, http.MethodPost, "/restore", `[{"acquisitionNumber":"A1"},{"bookTitle":"no key"}]`)

		is.Equal(response.StatusCode, http.StatusOK)
		is.Equal(body, jsonLine(t, recordhttp.RestoreReportResponse{
			Total:    2,
			Restored: 1,
			Failures: []recordhttp.RestoreFailureResponse{{Error: "storage transaction failed: record has no acquisition number"}},
		}))

		notices := banner.Current()
		is.Equal(notices[len(notices)-1].Message, "Restored 1 of 2 records")
		is.True(!notices[len(notices)-1].Success)
	})

	t.Run("expected malformed backup error", func(t *testing.T) {
		is := is.New(t)

		response, body := do(server, http.MethodPost, "/restore", `{"acquisitionNumber":"A1"}`)

		is.Equal(response.StatusCode, http.StatusBadRequest)

		var errR record.ErrResponse
		is.NoErr(json.Unmarshal([]byte(body), &errR))
		is.Equal(errR.Code, record.ErrResponseMalformedBackup.Code)
	})
}

func TestPrint(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAPI := httpmock.NewMockServiceAPI(ctrl)
	server, banner := newServer(t, mockAPI, recordhttp.ServerConfig{})

	t.Run("renders the records as an escaped table", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().Search(gomock.Any(), "").Return([]record.AcquisitionRecord{
			{AcquisitionNumber: "A1", BookTitle: "<b>Dune</b>", Price: "500", ClassNumber: "823.914", StudentName: "Nimal", StudentClass: "10B", DueDate: "2024-03-15"},
		}, nil)

		response, body := do(server, http.MethodGet, "/print", "")

		is.Equal(response.StatusCode, http.StatusOK)
		is.Equal(response.Header.Get("content-type"), "text/html; charset=utf-8")
		is.True(strings.Contains(body, "<td>&lt;b&gt;Dune&lt;/b&gt;</td>"))
		is.True(strings.Contains(body, "<td>Nimal</td>"))
		is.True(strings.Contains(body, "<th>Acq. No.</th><th>Title</th><th>Publisher</th><th>Price</th><th>Student</th><th>Borrowed</th><th>Due</th>"))
		is.True(strings.Contains(body, "<td>500</td>"))
		is.True(!strings.Contains(body, "823.914"))
		is.True(!strings.Contains(body, "10B"))
		is.True(strings.Contains(body, "Printed 2024-03-01 09:30: 1 records."))
		is.True(!strings.Contains(body, "<button"))
	})

	t.Run("expected invalid sort error with a failure notice", func(t *testing.T) {
		is := is.New(t)

		response, body := do(server, http.MethodGet, "/print?sort_by=isbn", "")

		is.Equal(response.StatusCode, http.StatusBadRequest)
		is.Equal(body, jsonLine(t, record.ErrResponseQuerySortByInvalid))
		notices := banner.Current()
		is.Equal(len(notices), 1)
		is.Equal(notices[0].Message, record.ErrResponseQuerySortByInvalid.Message)
		is.True(!notices[0].Success)
	})
}

func TestNotices(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAPI := httpmock.NewMockServiceAPI(ctrl)
	server, banner := newServer(t, mockAPI, recordhttp.ServerConfig{})

	t.Run("lists the notices on display", func(t *testing.T) {
		is := is.New(t)

		n := notifications.NewSuccess("Record A1 saved")
		is.NoErr(banner.Notify(context.Background(), n))

		response, body := do(server, http.MethodGet, "/notices", "")

		is.Equal(response.StatusCode, http.StatusOK)
		is.Equal(body, jsonLine(t, []notifications.Notice{n}))
	})
}

func TestPing(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAPI := httpmock.NewMockServiceAPI(ctrl)

	t.Run("answers each ping and counts it", func(t *testing.T) {
		is := is.New(t)
		server, _ := newServer(t, mockAPI, recordhttp.ServerConfig{})

		response, _ := do(server, http.MethodGet, "/ping", "")
		is.Equal(response.StatusCode, http.StatusNoContent)

		response, body := do(server, http.MethodGet, "/metrics", "")
		is.Equal(response.StatusCode, http.StatusOK)
		is.True(strings.Contains(body, `library_register_http_requests_total{code="204",method="get",route="/ping"} 1`))
	})

	t.Run("expected too many requests over the rate limit", func(t *testing.T) {
		is := is.New(t)
		server, _ := newServer(t, mockAPI, recordhttp.ServerConfig{RateLimit: 0.001, RateBurst: 1})

		response, _ := do(server, http.MethodGet, "/ping", "")
		is.Equal(response.StatusCode, http.StatusNoContent)

		response, _ = do(server, http.MethodGet, "/ping", "")
		is.Equal(response.StatusCode, http.StatusTooManyRequests)
	})
}
