package eval

import (
	"fmt"

	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/irblock"
)

// EvalBuiltinVaStart materializes `__builtin_va_start(ap, lastParam)`: ap
// must be an lvalue of type `va_list` (represented here as a plain
// `void *`), lastParam must be the function's last named parameter.
func EvalBuiltinVaStart(block *irblock.Block, ap irblock.Var, lastParam irblock.Var) error {
	if !ap.Lvalue {
		return fmt.Errorf("__builtin_va_start: first argument must be an lvalue")
	}
	if !ctype.IsPointer(ap.Type) {
		return fmt.Errorf("__builtin_va_start: first argument must be of type va_list")
	}
	block.Emit(irblock.Op{Code: irblock.OpCall, Args: []irblock.Var{ap, lastParam}})
	return nil
}

// EvalBuiltinVaArg materializes `__builtin_va_arg(ap, type)`, advancing ap
// and yielding a value of the requested type.
func EvalBuiltinVaArg(block *irblock.Block, dest irblock.Var, ap irblock.Var, argType *ctype.Type) (irblock.Var, error) {
	if !ctype.IsPointer(ap.Type) {
		return irblock.Var{}, fmt.Errorf("__builtin_va_arg: first argument must be of type va_list")
	}
	result := dest
	result.Type = argType
	result.Lvalue = false
	block.Emit(irblock.Op{Code: irblock.OpCall, Dest: result, Args: []irblock.Var{ap}})
	return result, nil
}
