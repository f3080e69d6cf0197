// Package runtime performs boundary crossings between host values and
// registered native functions.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, config.Default(), registry.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	// Call with dynamic Go values
//	result, err := rt.CallValues(ctx, "sum", 2.0, 3.0)
//	fmt.Println(result) // 5
//
//	// Or with host refs the caller owns
//	a := rt.Host().NewNumber(2)
//	b := rt.Host().NewNumber(3)
//	ref, err := rt.Call(ctx, "sum", a, b)
//	defer rt.Host().Release(ref)
//
// # Calls
//
// Each Call opens a fresh Env, wraps the arguments into call-scoped handles,
// converts them with the function's parameter rules, runs the native body and
// converts the result. The result is escaped to a ref owned by the caller and
// the Env is closed, invalidating every handle the call issued.
//
// Functions are looked up by their camelCase host name; the snake_case native
// name is accepted as well.
//
// # Thread Safety
//
// Runtime is NOT thread-safe. Native bodies may call back into the runtime on
// the same goroutine; nested calls get their own Envs.
package runtime
