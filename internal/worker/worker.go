// Package worker embeds one script-engine instance per invocation and
// bridges the dispatcher's Req/Res types across the JS boundary by hand,
// field by field — no reflection-based marshaling, matching the explicit
// IntoJs/FromJs approach the original engine used.
package worker

import (
	"fmt"

	"github.com/dop251/goja"
)

// Req is the request passed into a handler.
type Req struct {
	Method  string
	URL     string
	Query   map[string]string
	Params  map[string]string
	Headers map[string]string
	Body    *string
}

// Res is the response a handler returns.
type Res struct {
	Status  int
	Headers map[string]string
	Body    *string
}

const maxPumpIterations = 10_000

// ScriptWorker holds one goja runtime that has evaluated a bundled artifact
// into its exported handler map. It is not safe for concurrent use; callers
// needing concurrency construct one ScriptWorker per goroutine.
type ScriptWorker struct {
	vm       *goja.Runtime
	handlers *goja.Object
}

// New evaluates code (the bundler's flattened IIFE artifact) and installs
// the `print` global that the core console module forwards to. print is
// called once per console.log/info/warn/error invocation from script code.
func New(code string, print func(string)) (*ScriptWorker, error) {
	vm := goja.New()
	if err := vm.Set("print", func(msg string) { print(msg) }); err != nil {
		return nil, fmt.Errorf("worker: installing print: %w", err)
	}

	v, err := vm.RunString(code)
	if err != nil {
		return nil, fmt.Errorf("worker: evaluating artifact: %w", err)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, fmt.Errorf("worker: artifact did not evaluate to a handler object")
	}
	handlers := v.ToObject(vm)

	return &ScriptWorker{vm: vm, handlers: handlers}, nil
}

// Run invokes the named handler with req and waits for its returned promise
// to settle, pumping the runtime's job queue in between. A handler that
// returns a plain (non-promise) value is accepted too.
func (w *ScriptWorker) Run(name string, req Req) (Res, error) {
	fnVal := w.handlers.Get(name)
	if fnVal == nil || goja.IsUndefined(fnVal) {
		return Res{}, fmt.Errorf("worker: no handler named %q", name)
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return Res{}, fmt.Errorf("worker: %q is not callable", name)
	}

	result, err := fn(goja.Undefined(), reqToJS(w.vm, req))
	if err != nil {
		return Res{}, fmt.Errorf("worker: handler %q threw: %w", name, err)
	}

	promise, ok := result.Export().(*goja.Promise)
	if !ok {
		return resFromJS(w.vm, result)
	}

	for i := 0; i < maxPumpIterations; i++ {
		switch promise.State() {
		case goja.PromiseStateFulfilled:
			return resFromJS(w.vm, promise.Result())
		case goja.PromiseStateRejected:
			return Res{}, fmt.Errorf("worker: handler %q rejected: %s", name, promise.Result().String())
		}
		if _, err := w.vm.RunString(""); err != nil {
			return Res{}, fmt.Errorf("worker: pumping handler %q: %w", name, err)
		}
	}
	return Res{}, fmt.Errorf("worker: handler %q did not settle its promise", name)
}

func reqToJS(vm *goja.Runtime, req Req) *goja.Object {
	obj := vm.NewObject()
	obj.Set("method", req.Method)
	obj.Set("url", req.URL)
	obj.Set("query", stringMapToJS(vm, req.Query))
	obj.Set("params", stringMapToJS(vm, req.Params))
	obj.Set("headers", stringMapToJS(vm, req.Headers))
	if req.Body != nil {
		obj.Set("body", *req.Body)
	} else {
		obj.Set("body", goja.Undefined())
	}
	return obj
}

func stringMapToJS(vm *goja.Runtime, m map[string]string) *goja.Object {
	obj := vm.NewObject()
	for k, v := range m {
		obj.Set(k, v)
	}
	return obj
}

func resFromJS(vm *goja.Runtime, v goja.Value) (Res, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return Res{}, fmt.Errorf("worker: handler did not return an object")
	}
	obj := v.ToObject(vm)

	sv := obj.Get("status")
	if sv == nil || goja.IsUndefined(sv) {
		return Res{}, fmt.Errorf("worker: handler response is missing a status")
	}
	status := int(sv.ToInteger())

	headers := make(map[string]string)
	if hv := obj.Get("headers"); hv != nil && !goja.IsUndefined(hv) && !goja.IsNull(hv) {
		hobj := hv.ToObject(vm)
		for _, k := range hobj.Keys() {
			headers[k] = hobj.Get(k).String()
		}
	}

	var body *string
	if bv := obj.Get("body"); bv != nil && !goja.IsUndefined(bv) && !goja.IsNull(bv) {
		s := bv.String()
		body = &s
	}

	return Res{Status: status, Headers: headers, Body: body}, nil
}
