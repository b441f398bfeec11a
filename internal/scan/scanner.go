package scan

import (
	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
)

// Result is everything recognized in one source file.
type Result struct {
	Handlers     []ir.HandlerDescriptor
	Declarations []ir.TypeDeclaration
	Components   []ir.ComponentDescriptor
	Diagnostics  diagnostic.Diagnostics
}

// ScanHandlerFile extracts handlers, and any type declarations written
// alongside them, from a handler source file.
func ScanHandlerFile(path, src string) Result {
	masked := maskComments(src)
	fc := &fileContext{
		path:      path,
		src:       src,
		masked:    masked,
		sdk:       findSDKBindings(masked),
		dbClients: findDBClients(masked),
	}

	var res Result

	handlers, diags := scanHandlers(fc)
	res.Handlers = handlers
	res.Diagnostics.Add(diags...)

	decls, diags := scanDeclarations(path, src)
	res.Declarations = decls
	res.Diagnostics.Add(diags...)

	return res
}

// ScanTypeFile extracts type declarations from a declaration file.
func ScanTypeFile(path, src string) Result {
	var res Result

	decls, diags := scanDeclarations(path, src)
	res.Declarations = decls
	res.Diagnostics.Add(diags...)

	return res
}

// ScanComponentFile extracts component metadata from a UI source file.
func ScanComponentFile(path, src string) Result {
	return Result{Components: []ir.ComponentDescriptor{describeComponent(path, src)}}
}
