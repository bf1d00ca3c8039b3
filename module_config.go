package wasmlite

import (
	"io"
	"strings"

	"github.com/wasmlite/wasmlite/internal/wasi"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

// ModuleConfig configures one instantiation: its name, its command-line arguments and environment
// as seen by wasi_snapshot_preview1, where its standard output/error go, which functions to run
// after linking, and any import renames needed to link it against a different host surface than
// it was compiled against.
//
// Note: there is no filesystem or socket configuration here; this runtime does not implement
// those WASI surfaces (see internal/wasi's package doc).
type ModuleConfig struct {
	name           string
	startFunctions []string

	args    []string
	environ []string // pair-indexed, mirrors os.Environ ordering
	environKeys map[string]int

	stdout io.Writer
	stderr io.Writer

	// replacedImports holds the latest state of WithImport. Key is NUL delimited since module and
	// name can both contain any UTF-8 character.
	replacedImports map[string][2]string
	// replacedImportModules holds the latest state of WithImportModule.
	replacedImportModules map[string]string
}

// NewModuleConfig returns a ModuleConfig whose start functions default to ["_start"], matching
// the wasi_snapshot_preview1 command convention.
func NewModuleConfig() *ModuleConfig {
	return &ModuleConfig{
		startFunctions: []string{"_start"},
		environKeys:    map[string]int{},
	}
}

// WithName configures the module name it is instantiated and later looked up under.
func (c *ModuleConfig) WithName(name string) *ModuleConfig {
	c.name = name
	return c
}

// WithStartFunctions configures the exported functions to call, in order, after instantiation and
// after the module's own start section (if any) has run. A name with no matching export is
// skipped rather than erroring, so a caller can list both a command and a reactor's init function
// without knowing ahead of time which one a given module has.
func (c *ModuleConfig) WithStartFunctions(startFunctions ...string) *ModuleConfig {
	c.startFunctions = startFunctions
	return c
}

// WithArgs assigns the command-line arguments wasi_snapshot_preview1's args_get returns. Neither
// WebAssembly nor WASI require argv[0] to be a program name; this runtime passes exactly what is
// given here.
func (c *ModuleConfig) WithArgs(args ...string) *ModuleConfig {
	c.args = args
	return c
}

// WithEnv sets an environment variable wasi_snapshot_preview1's environ_get returns, replacing
// any existing value for key. This never defaults to the embedding process's own environment.
func (c *ModuleConfig) WithEnv(key, value string) *ModuleConfig {
	if i, ok := c.environKeys[key]; ok {
		c.environ[i+1] = value
	} else {
		c.environKeys[key] = len(c.environ)
		c.environ = append(c.environ, key, value)
	}
	return c
}

// WithStdout configures where fd_write to file descriptor 1 goes. Defaults to io.Discard.
func (c *ModuleConfig) WithStdout(stdout io.Writer) *ModuleConfig {
	c.stdout = stdout
	return c
}

// WithStderr configures where fd_write to file descriptor 2 goes. Defaults to io.Discard.
func (c *ModuleConfig) WithStderr(stderr io.Writer) *ModuleConfig {
	c.stderr = stderr
	return c
}

// WithImport replaces a specific (module, name) import pair with a new one, applied after any
// WithImportModule renames. Use this to split a monolithic import module, or to re-point one
// import without touching the rest.
func (c *ModuleConfig) WithImport(oldModule, oldName, newModule, newName string) *ModuleConfig {
	if c.replacedImports == nil {
		c.replacedImports = map[string][2]string{}
	}
	var b strings.Builder
	b.WriteString(oldModule)
	b.WriteByte(0)
	b.WriteString(oldName)
	c.replacedImports[b.String()] = [2]string{newModule, newName}
	return c
}

// WithImportModule renames every import of oldModule to newModule, applied before any WithImport
// renames. Typically used to repoint an older wasi_unstable import module at
// wasi.ModuleName.
func (c *ModuleConfig) WithImportModule(oldModule, newModule string) *ModuleConfig {
	if c.replacedImportModules == nil {
		c.replacedImportModules = map[string]string{}
	}
	c.replacedImportModules[oldModule] = newModule
	return c
}

// replaceImports returns module with every configured rename applied, or module itself unchanged
// if nothing was configured or it has no imports.
func (c *ModuleConfig) replaceImports(module *wasm.Module) *wasm.Module {
	if (c.replacedImportModules == nil && c.replacedImports == nil) || module.ImportSection == nil {
		return module
	}

	changed := false
	ret := *module
	replaced := make([]*wasm.Import, len(module.ImportSection))
	copy(replaced, module.ImportSection)

	for oldModule, newModule := range c.replacedImportModules {
		for i, imp := range replaced {
			if imp.Module == oldModule {
				changed = true
				cp := *imp
				cp.Module = newModule
				replaced[i] = &cp
			}
		}
	}

	for oldImport, newImport := range c.replacedImports {
		nulIdx := strings.IndexByte(oldImport, 0)
		oldModule, oldName := oldImport[:nulIdx], oldImport[nulIdx+1:]
		for i, imp := range replaced {
			if imp.Module == oldModule && imp.Name == oldName {
				changed = true
				cp := *imp
				cp.Module, cp.Name = newImport[0], newImport[1]
				replaced[i] = &cp
			}
		}
	}

	if !changed {
		return module
	}
	ret.ImportSection = replaced
	return &ret
}

// wasiConfig builds the wasi_snapshot_preview1 host module configuration this ModuleConfig
// describes. Stdout/Stderr default to io.Discard rather than the embedding process's real stdio,
// so two concurrently instantiated modules can't interleave output through the same file
// descriptor unless the caller explicitly wires that up.
func (c *ModuleConfig) wasiConfig() *wasi.Config {
	stdout, stderr := c.stdout, c.stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	var environ []string
	for i := 0; i < len(c.environ); i += 2 {
		environ = append(environ, c.environ[i]+"="+c.environ[i+1])
	}

	return &wasi.Config{
		Args:    c.args,
		Environ: environ,
		Stdout:  stdout,
		Stderr:  stderr,
	}
}
