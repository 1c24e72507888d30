package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateKeyNeverReturnsCleartext(t *testing.T) {
	h, _ := newTestHandler(t)

	body, _ := json.Marshal(createKeyRequest{Name: "ci", Key: "super-secret"})
	req := withAuth(httptest.NewRequest(http.MethodPost, "/admin/keys", bytes.NewReader(body)))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("super-secret")) {
		t.Fatal("response must never contain the cleartext key")
	}

	var created keyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Name != "ci" {
		t.Errorf("created.Name = %q, want ci", created.Name)
	}
}

func TestCreateKeyRequiresNameAndKey(t *testing.T) {
	h, _ := newTestHandler(t)

	body, _ := json.Marshal(createKeyRequest{Name: "", Key: "x"})
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, withAuth(httptest.NewRequest(http.MethodPost, "/admin/keys", bytes.NewReader(body))))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteKey(t *testing.T) {
	h, store := newTestHandler(t)
	if _, err := store.AddAPIKey(context.Background(), "ci", "deadbeef"); err != nil {
		t.Fatalf("seed AddAPIKey: %v", err)
	}

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, withAuth(httptest.NewRequest(http.MethodDelete, "/admin/keys/ci", nil)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec2, withAuth(httptest.NewRequest(http.MethodDelete, "/admin/keys/ci", nil)))
	if rec2.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec2.Code)
	}
}

func TestListKeysOmitsFingerprint(t *testing.T) {
	h, store := newTestHandler(t)
	if _, err := store.AddAPIKey(context.Background(), "ci", "deadbeef"); err != nil {
		t.Fatalf("seed AddAPIKey: %v", err)
	}

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, withAuth(httptest.NewRequest(http.MethodGet, "/admin/keys", nil)))

	if bytes.Contains(rec.Body.Bytes(), []byte("deadbeef")) {
		t.Fatal("key listing must never include the fingerprint")
	}
}
