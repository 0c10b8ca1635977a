package debt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatic_Lookup(t *testing.T) {
	src := NewStatic(nil)
	ctx := context.Background()

	t.Run("known customer", func(t *testing.T) {
		rec, err := src.Lookup(ctx, "12345678901")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if rec.Name != "João Silva" {
			t.Errorf("Name = %q, want João Silva", rec.Name)
		}
		if rec.Amount.String() != "1250.5" {
			t.Errorf("Amount = %s, want 1250.5", rec.Amount)
		}
	})

	t.Run("formatted CPF normalizes", func(t *testing.T) {
		rec, err := src.Lookup(ctx, "987.654.321-00")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if rec.Name != "Maria Oliveira" {
			t.Errorf("Name = %q, want Maria Oliveira", rec.Name)
		}
	})

	t.Run("unknown customer gets default", func(t *testing.T) {
		rec, err := src.Lookup(ctx, "00000000000")
		if err != nil {
			t.Fatalf("Lookup should not error on miss: %v", err)
		}
		if rec.Name != "Cliente" || rec.Creditor != "nossa empresa parceira" {
			t.Errorf("miss returned %+v, want default record", rec)
		}
	})
}

func TestNormalizeCPF(t *testing.T) {
	tests := []struct{ in, want string }{
		{"123.456.789-01", "12345678901"},
		{"12345678901", "12345678901"},
		{"um 1 dois 2", "12"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCPF(tt.in); got != tt.want {
			t.Errorf("NormalizeCPF(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHTTP_Lookup(t *testing.T) {
	t.Run("ok response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/debts/12345678901" {
				t.Errorf("path = %q", r.URL.Path)
			}
			_, _ = w.Write([]byte(`{"nome":"João Silva","valor":1250.50,"empresa":"Banco Alpha","score":750}`))
		}))
		defer srv.Close()

		rec, err := NewHTTP(srv.URL, nil).Lookup(context.Background(), "123.456.789-01")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if rec.Name != "João Silva" || rec.Score != 750 {
			t.Errorf("got %+v", rec)
		}
	})

	t.Run("not found degrades to default", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		rec, err := NewHTTP(srv.URL, nil).Lookup(context.Background(), "999")
		if err != nil {
			t.Fatalf("404 should not error: %v", err)
		}
		if rec.Name != "Cliente" {
			t.Errorf("got %+v, want default", rec)
		}
	})

	t.Run("server error returns default with error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		rec, err := NewHTTP(srv.URL, nil).Lookup(context.Background(), "123")
		if err == nil {
			t.Error("expected error for 500")
		}
		if rec.Name != "Cliente" {
			t.Errorf("got %+v, want default fallback", rec)
		}
	})
}
