package storage_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/filer/pkg/storage"
)

const listBlobsXML = `<?xml version="1.0" encoding="utf-8"?>
<EnumerationResults ServiceEndpoint="http://127.0.0.1/filerstore" ContainerName="files">
  <Prefix>inbox/</Prefix>
  <Blobs>
    <Blob><Name>inbox/a.png</Name><Properties></Properties></Blob>
    <Blob><Name>inbox/b.txt</Name><Properties></Properties></Blob>
    <Blob><Name>inbox/Images/c.png</Name><Properties></Properties></Blob>
  </Blobs>
  <NextMarker />
</EnumerationResults>`

type blobRequest struct {
	method string
	path   string
	query  string
	source string
}

type fakeBlobService struct {
	mu       sync.Mutex
	requests []blobRequest
}

func (f *fakeBlobService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, blobRequest{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.Query().Get("prefix"),
		source: r.Header.Get("x-ms-copy-source"),
	})
	f.mu.Unlock()

	w.Header().Set("x-ms-version", "2023-11-03")
	w.Header().Set("x-ms-request-id", "test")

	switch {
	case r.Method == http.MethodGet && r.URL.Query().Get("comp") == "list":
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(listBlobsXML))
	case r.Method == http.MethodPut && r.Header.Get("x-ms-copy-source") != "":
		w.Header().Set("x-ms-copy-id", "copy-1")
		w.Header().Set("x-ms-copy-status", "success")
		w.WriteHeader(http.StatusAccepted)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusAccepted)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (f *fakeBlobService) recorded() []blobRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

func newFakeAzure(t *testing.T, source, destination string) (*fakeBlobService, storage.System) {
	t.Helper()

	svc := &fakeBlobService{}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	conn := strings.Replace(azuriteConnString, "http://127.0.0.1:10000", srv.URL, 1)
	cfg := &storage.Config{
		Backend:          storage.BackendAzure,
		ConnectionString: conn,
		Source:           source,
		Destination:      destination,
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc, sys
}

func TestAzureListRootLevelOnly(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"bare source", "inbox"},
		{"source with trailing slash", "inbox/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, sys := newFakeAzure(t, tt.source, "sorted")

			items, err := sys.List(context.Background())
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if !slices.Equal(items, []string{"a.png", "b.txt"}) {
				t.Errorf("List() = %v, want [a.png b.txt]", items)
			}

			reqs := svc.recorded()
			if len(reqs) != 1 {
				t.Fatalf("requests = %d, want 1", len(reqs))
			}
			if reqs[0].query != "inbox/" {
				t.Errorf("prefix = %q, want inbox/", reqs[0].query)
			}
		})
	}
}

func TestAzureMove(t *testing.T) {
	svc, sys := newFakeAzure(t, "inbox/", "/sorted/")

	key, err := sys.Move(context.Background(), "a.png", "Images")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if key != "sorted/Images/a.png" {
		t.Errorf("Move() key = %q, want sorted/Images/a.png", key)
	}

	reqs := svc.recorded()
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}

	copyReq, deleteReq := reqs[0], reqs[1]
	if copyReq.method != http.MethodPut || copyReq.path != "/filerstore/files/sorted/Images/a.png" {
		t.Errorf("copy request = %s %s", copyReq.method, copyReq.path)
	}
	if !strings.HasSuffix(copyReq.source, "/filerstore/files/inbox/a.png") {
		t.Errorf("copy source = %q, want suffix /filerstore/files/inbox/a.png", copyReq.source)
	}
	if deleteReq.method != http.MethodDelete || deleteReq.path != "/filerstore/files/inbox/a.png" {
		t.Errorf("delete request = %s %s", deleteReq.method, deleteReq.path)
	}
}

func TestAzureMoveRejectsSameLocation(t *testing.T) {
	svc, sys := newFakeAzure(t, "inbox", "")

	if _, err := sys.Move(context.Background(), "a.png", "inbox"); !errors.Is(err, storage.ErrSameLocation) {
		t.Fatalf("Move() error = %v, want %v", err, storage.ErrSameLocation)
	}
	if n := len(svc.recorded()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}
