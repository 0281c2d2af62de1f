// Package engine adapts a JSON Schema constraint engine for objectmodel.
//
// An Engine owns a single compiler and the extensions every schema compiled
// through it shares:
//   - the `is` keyword, which checks a value against one or more nominal types
//   - nominal types registered by name (RegisterType, RegisterTypes)
//   - custom keywords compiled into predicates (RegisterKeyword)
//
// Caller data is projected into the JSON data model before validation. Values
// without a JSON shape are seen by the engine as objects, while the `is`
// keyword and custom keywords still receive the original Go value.
//
// Basic usage:
//
//	e := engine.New()
//	_ = e.RegisterType("Money", engine.TypeOf[Money]())
//
//	compiled, err := e.Compile(map[string]any{"is": "Money"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if f := compiled.Check(value); f != nil {
//	    log.Printf("%s failed at %q: %s", f.Keyword, f.DataPath, f.Message)
//	}
package engine
