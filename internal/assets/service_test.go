package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
)

type stubUploader struct {
	calls   []string
	failOn  map[string]error
	counter int
}

func (s *stubUploader) Upload(ctx context.Context, fileName string, content io.Reader) (string, error) {
	s.calls = append(s.calls, fileName)
	if err, ok := s.failOn[fileName]; ok {
		return "", err
	}
	s.counter++
	return fmt.Sprintf("https://img.example/%d-%s", s.counter, fileName), nil
}

func newTestService(t *testing.T, uploader *stubUploader) Service {
	t.Helper()
	svc, err := NewService(uploader, 5, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func files(names ...string) []UploadFile {
	out := make([]UploadFile, len(names))
	for i, name := range names {
		out[i] = UploadFile{Name: name, Content: strings.NewReader("data")}
	}
	return out
}

func TestUploadBatchPreservesSelectionOrder(t *testing.T) {
	t.Parallel()

	uploader := &stubUploader{}
	svc := newTestService(t, uploader)

	res, err := svc.UploadBatch(context.Background(), 0, files("a.png", "b.png", "c.png"))
	if err != nil {
		t.Fatalf("UploadBatch: %v", err)
	}
	if len(res.Uploaded) != 3 || len(res.Failed) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !reflect.DeepEqual(uploader.calls, []string{"a.png", "b.png", "c.png"}) {
		t.Fatalf("uploads must be serialized in selection order, got %v", uploader.calls)
	}
	for i, up := range res.Uploaded {
		if up.Index != i {
			t.Fatalf("result %d carries index %d", i, up.Index)
		}
	}
}

func TestUploadBatchRejectsOversizedBatchWhole(t *testing.T) {
	t.Parallel()

	uploader := &stubUploader{}
	svc := newTestService(t, uploader)

	_, err := svc.UploadBatch(context.Background(), 3, files("a.png", "b.png", "c.png"))
	if err == nil {
		t.Fatal("expected batch rejection")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	if len(uploader.calls) != 0 {
		t.Fatalf("no upload may start for a rejected batch, got %v", uploader.calls)
	}
}

func TestUploadBatchExactlyAtCap(t *testing.T) {
	t.Parallel()

	uploader := &stubUploader{}
	svc := newTestService(t, uploader)

	res, err := svc.UploadBatch(context.Background(), 3, files("a.png", "b.png"))
	if err != nil {
		t.Fatalf("batch filling the cap exactly must pass: %v", err)
	}
	if len(res.Uploaded) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestUploadBatchPartialFailure(t *testing.T) {
	t.Parallel()

	uploader := &stubUploader{failOn: map[string]error{"b.png": errors.New("host down")}}
	svc := newTestService(t, uploader)

	res, err := svc.UploadBatch(context.Background(), 0, files("a.png", "b.png", "c.png"))
	if err != nil {
		t.Fatalf("UploadBatch: %v", err)
	}
	if len(res.Uploaded) != 2 {
		t.Fatalf("expected 2 successes, got %+v", res.Uploaded)
	}
	if len(res.Failed) != 1 || res.Failed[0].FileName != "b.png" || res.Failed[0].Index != 1 {
		t.Fatalf("expected b.png to fail with its index, got %+v", res.Failed)
	}
	if res.Uploaded[1].FileName != "c.png" {
		t.Fatal("files after a failure must still upload")
	}
}

func TestAppendLink(t *testing.T) {
	t.Parallel()

	list, err := AppendLink([]string{"u1"}, "  https://img.example/x.png  ", 5)
	if err != nil {
		t.Fatalf("AppendLink: %v", err)
	}
	if !reflect.DeepEqual(list, []string{"u1", "https://img.example/x.png"}) {
		t.Fatalf("unexpected list %v", list)
	}

	if _, err := AppendLink(nil, "   ", 5); err == nil {
		t.Fatal("blank link must be rejected")
	}
	if _, err := AppendLink([]string{"1", "2", "3", "4", "5"}, "u6", 5); err == nil {
		t.Fatal("append past the cap must be rejected")
	}
}

func TestRemovePreservesOrder(t *testing.T) {
	t.Parallel()

	list, err := Remove([]string{"a", "b", "c", "d"}, 1)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !reflect.DeepEqual(list, []string{"a", "c", "d"}) {
		t.Fatalf("unexpected list %v", list)
	}

	if _, err := Remove([]string{"a"}, 1); err == nil {
		t.Fatal("out of range index must be rejected")
	}
	if _, err := Remove(nil, 0); err == nil {
		t.Fatal("remove from empty list must be rejected")
	}
}
