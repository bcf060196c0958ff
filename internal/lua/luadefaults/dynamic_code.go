package luadefaults

import lua "github.com/yuin/gopher-lua"

// InjectCatalogLibs loads the libs available to catalog files. Catalog
// files are plain data with a few helpers, so io, os and debug are left out.
func InjectCatalogLibs(L *lua.LState) error {
	for _, pair := range []struct {
		n string
		f lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage}, // Must be first
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(pair.f),
			NRet:    0,
			Protect: true,
		}, lua.LString(pair.n)); err != nil {
			return err
		}
	}
	for _, unsafe := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(unsafe, lua.LNil)
	}
	return nil
}
