// Package schema provides schema registration and validation for objectmodel.
//
// A Registry stores JSON Schema documents under unique keys. A Builder
// compiles documents through an engine.Engine into Validators, which check
// arbitrary data and describe the first violation as a *ValidationError.
//
// Basic usage:
//
//	registry := schema.NewRegistry()
//	err := registry.AddSchema("user", schema.Schema{
//	    "title":    "user",
//	    "version":  1,
//	    "type":     "object",
//	    "required": []string{"name"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	builder := schema.NewBuilder(engine.New())
//	s, _ := registry.GetSchema("user")
//	validator, err := builder.Build(s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := validator.Validate(data); err != nil {
//	    var verr *schema.ValidationError
//	    if errors.As(err, &verr) {
//	        d, _ := verr.Diagnostics()
//	        log.Printf("%s failed at %q", d.Keyword, d.Path)
//	    }
//	}
//
// Error messages read as
//
//	[user:v1] `type` got number, want string at /name but found number
//
// that is: schema identity, failed keyword, engine message, data path
// ("top-level" for the root value) and keyword specific detail.
package schema
