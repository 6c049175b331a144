package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriterWriteHeaderOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewResponseWriter(rec)

	w.WriteHeader(http.StatusNotFound)
	w.WriteHeader(http.StatusOK)

	if w.Status() != http.StatusNotFound {
		t.Errorf("Status() = %d, want %d", w.Status(), http.StatusNotFound)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("underlying status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestResponseWriterImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewResponseWriter(rec)

	if w.Written() {
		t.Error("Written() = true before any write")
	}

	n, err := w.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 5 {
		t.Errorf("Write returned %d, want 5", n)
	}
	if w.Status() != http.StatusOK {
		t.Errorf("Status() = %d, want %d", w.Status(), http.StatusOK)
	}
	if !w.Written() {
		t.Error("Written() = false after body write")
	}
}

func TestResponseWriterSize(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewResponseWriter(rec)

	_, _ = w.Write([]byte("abc"))
	_, _ = w.Write([]byte("defgh"))

	if w.Size() != 8 {
		t.Errorf("Size() = %d, want 8", w.Size())
	}
}

func TestResponseWriterUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewResponseWriter(rec)

	if w.Unwrap() != rec {
		t.Error("Unwrap() did not return the underlying writer")
	}
}
