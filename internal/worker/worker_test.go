package worker

import (
	"strings"
	"testing"
)

const helloArtifact = `(function(){
	async function hello(req){
		return {
			status: 200,
			headers: { "content-type": "application/json" },
			body: JSON.stringify({ method: req.method, url: req.url })
		};
	}
	function sync(req) {
		return { status: 204, headers: {}, body: null };
	}
	return { hello: hello, sync: sync };
})();`

func TestRunAsyncHandler(t *testing.T) {
	var logged []string
	w, err := New(helloArtifact, func(msg string) { logged = append(logged, msg) })
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := w.Run("hello", Req{Method: "GET", URL: "https://example.com/x"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != 200 {
		t.Fatalf("expected status 200, got %d", res.Status)
	}
	if res.Body == nil || !strings.Contains(*res.Body, "https://example.com/x") {
		t.Fatalf("expected the body to echo the request url, got %v", res.Body)
	}
}

func TestRunSyncHandler(t *testing.T) {
	w, err := New(helloArtifact, func(string) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := w.Run("sync", Req{Method: "GET", URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != 204 {
		t.Fatalf("expected status 204, got %d", res.Status)
	}
}

func TestRunUnknownHandler(t *testing.T) {
	w, err := New(helloArtifact, func(string) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := w.Run("missing", Req{}); err == nil {
		t.Fatal("expected an error for an unknown handler name")
	}
}

func TestRunMissingStatusIsError(t *testing.T) {
	code := `(function(){
		async function handler(req){
			return { headers: {}, body: "oops" };
		}
		return { handler: handler };
	})();`

	w, err := New(code, func(string) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := w.Run("handler", Req{}); err == nil {
		t.Fatal("expected an error for a response with no status")
	}
}

func TestPrintForwardsConsoleCalls(t *testing.T) {
	code := `(function(){
		async function handler(req){
			print("hello from script");
			return { status: 200, headers: {}, body: "ok" };
		}
		return { handler: handler };
	})();`

	var logged []string
	w, err := New(code, func(msg string) { logged = append(logged, msg) })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := w.Run("handler", Req{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(logged) != 1 || logged[0] != "hello from script" {
		t.Fatalf("expected print to forward exactly one message, got %v", logged)
	}
}
