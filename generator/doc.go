// Package generator walks a registry and produces the marshaling
// procedures for every compound type plus the opcode table for its
// commands.
//
// For each struct or union that is not an alias, Run emits a writer
// (marshal_T) and an allocating reader (unmarshal_T). Aliases reuse the
// procedures of the type they resolve to. Optionally it also emits
// readers that decode into caller-owned storage (unmarshal_into_T) and
// reply procedures over the output parameters of each command.
//
// Any generation error aborts the run; no partial module is returned.
//
// # Usage
//
//	mod, err := generator.New(generator.DefaultOptions()).Run(reg)
//	if err != nil {
//	    return err
//	}
//	w, _ := mod.ProcFor("Line", marshalgen.Write)
package generator
