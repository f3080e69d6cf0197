// Package hostbridge converts values between native Go representations and a
// dynamically-typed host runtime across a call boundary, and synthesizes static
// declarations for the exported bridge functions from the same conversion rules.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	hostbridge/          Root package with core Memory and Allocator interfaces
//	├── value/           Value category registry (categories, number kinds, types)
//	├── host/            Dynamically-typed host heap backed by wazero linear memory
//	├── env/             Call-scoped environments and generation-checked handles
//	├── convert/         Conversion engine: typed rules per value category
//	├── shape/           Shape descriptors for struct <-> host object mapping
//	├── registry/        Exported function registry and call dispatch
//	├── runtime/         High-level API: one boundary crossing per Call
//	├── decl/            Declaration synthesis (TypeScript, WIT, JSON Schema)
//	├── naming/          Reversible identifier casing
//	├── manifest/        YAML manifest of functions and shapes
//	├── internal/cli/    hostbridge command line (gen, list, call, explore)
//	├── config/          Configuration loading and validation
//	└── errors/          Structured error types
//
// # Quick Start
//
// Export a function and call it through the host:
//
//	reg := registry.New()
//	reg.MustRegister(registry.Func2("sum",
//	    registry.P("a", convert.U32()),
//	    registry.P("b", convert.U32()),
//	    convert.U32(),
//	    func(_ context.Context, a, b uint32) (uint32, error) { return a + b, nil },
//	))
//
//	rt, err := runtime.New(ctx, config.Default(), reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	result, err := rt.CallValues(ctx, "sum", 2.0, 3.0)
//	fmt.Println(result) // 5
//
// # Declarations
//
// The declaration synthesizer reads the same rule types the conversion engine
// runs, so the declared signature of a function cannot disagree with what the
// bridge accepts:
//
//	fn, _ := reg.Lookup("sum")
//	sig, _ := decl.Signature(fn.Signature())
//	fmt.Println(sig) // (a: number, b: number) => number
//
// # Thread Safety
//
// Registry is safe for concurrent use. Runtime, the host heap and environments
// are NOT thread-safe; each call is one synchronous boundary crossing on the
// goroutine that owns the runtime.
//
// # Handle Lifetime
//
// Handles are valid only while the call that issued them is active. Using a
// handle after its call returned fails with a handle scope violation instead of
// reading stale state. Use Env.Escape to keep a host value beyond the call.
package hostbridge
