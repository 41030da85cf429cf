package analyze

import (
	"go/types"

	"entity-generator/internal/model"
)

const maphashHash = "*hash/maphash.Hash"

// capabilities reports which identity operations t provides itself. The
// emitted code calls methods on an addressable field, so pointer receiver
// methods count too.
func capabilities(pkg *types.Package, t types.Type) model.Capabilities {
	return model.Capabilities{
		EqualMethod: hasEqualMethod(pkg, t),
		HashMethod:  hasHashMethod(pkg, t),
	}
}

// hasEqualMethod reports whether t has Equal(t) bool.
func hasEqualMethod(pkg *types.Package, t types.Type) bool {
	sig := lookupMethod(pkg, t, "Equal")
	if sig == nil || sig.Params().Len() != 1 || sig.Results().Len() != 1 {
		return false
	}

	if !types.Identical(sig.Params().At(0).Type(), t) {
		return false
	}

	res, ok := sig.Results().At(0).Type().Underlying().(*types.Basic)

	return ok && res.Kind() == types.Bool
}

// hasHashMethod reports whether t has Hash(*maphash.Hash) with no results.
func hasHashMethod(pkg *types.Package, t types.Type) bool {
	sig := lookupMethod(pkg, t, "Hash")
	if sig == nil || sig.Params().Len() != 1 || sig.Results().Len() != 0 {
		return false
	}

	return types.TypeString(sig.Params().At(0).Type(), nil) == maphashHash
}

func lookupMethod(pkg *types.Package, t types.Type, name string) *types.Signature {
	obj, _, _ := types.LookupFieldOrMethod(t, true, pkg, name)

	fn, ok := obj.(*types.Func)
	if !ok {
		return nil
	}

	sig, _ := fn.Type().(*types.Signature)

	return sig
}
