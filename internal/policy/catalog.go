package policy

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// Block categories for the command domain.
const (
	CategoryFrontendDevServer = "frontend-dev-server"
	CategoryDjangoRunserver   = "django-runserver"
	CategoryDjangoManagement  = "django-management"
	CategoryASGIDevServer     = "asgi-dev-server"
	CategoryCeleryWorker      = "celery-worker"
	// CategoryProjectPolicy marks block rules added via project config.
	CategoryProjectPolicy = "project-policy"
)

// Advisory categories for the path domain.
const (
	AdvisoryTestFile        = "test-file"
	AdvisoryVueComponent    = "vue-component"
	AdvisoryTypeDefinitions = "type-definitions"
	AdvisoryComposable      = "composable"
)

// Catalog holds the compiled rule collections for both domains.
// It is built once at startup and never mutated afterwards.
type Catalog struct {
	// Commands classifies shell commands.
	Commands RuleSet
	// PathTriggers are the ordered advisory triggers for file paths.
	// Nothing is ever blocked in this domain, only warned.
	PathTriggers []Rule
}

// builtinAllow lists commands that must run locally even though a block
// pattern would also match them. Declaration order is load-bearing.
var builtinAllow = []RuleSpec{
	// Build commands
	{Pattern: `\bnpm\s+run\s+build\b`, Category: "build"},
	{Pattern: `\bnpm\s+run\s+test\b`, Category: "test"},
	{Pattern: `\byarn\s+build\b`, Category: "build"},
	{Pattern: `\bvite\s+build\b`, Category: "build"},

	// Django: ONLY startapp runs locally (file ownership). This allow rule
	// is the authoritative statement of the exemption; the management block
	// pattern below also carries a (?!startapp\b) exception so either rule
	// alone keeps startapp runnable.
	{Pattern: `\bpython\s+manage\.py\s+startapp\b`, Category: "startapp"},
	{Pattern: `(^|\s)\./manage\.py\s+startapp\b`, Category: "startapp"},

	// Container orchestration is always allowed: it is the sanctioned way
	// to reach the services this gate protects.
	{Pattern: `\bdocker\s+compose\b`, Category: "docker"},
	{Pattern: `\bdocker-compose\b`, Category: "docker"},
	{Pattern: `\bdocker\s+`, Category: "docker"},

	// Package management
	{Pattern: `\bnpm\s+(install|ci|update)\b`, Category: "package-install"},
	{Pattern: `\bpip\s+install\b`, Category: "package-install"},
}

// builtinBlock lists commands that conflict with services already running
// under compose, or that need the compose-managed database.
var builtinBlock = []RuleSpec{
	// Frontend dev servers
	{Pattern: `\bnpm\s+run\s+(dev|serve)\b`, Category: CategoryFrontendDevServer},
	{Pattern: `\byarn\s+(dev|serve)\b`, Category: CategoryFrontendDevServer},
	{Pattern: `\bpnpm\s+(dev|serve)\b`, Category: CategoryFrontendDevServer},
	{Pattern: `\bvite\b(?!.*build)`, Category: CategoryFrontendDevServer},

	// Django dev server
	{Pattern: `\bpython\s+manage\.py\s+runserver\b`, Category: CategoryDjangoRunserver},
	{Pattern: `(^|\s)\./manage\.py\s+runserver\b`, Category: CategoryDjangoRunserver},

	// Django management commands all need the compose database except
	// startapp. The embedded exception plus the explicit allow rule above
	// are deliberately redundant: each is independently testable and the
	// exemption survives an incorrect edit to either one.
	{Pattern: `\bpython\s+manage\.py\s+(?!startapp\b)\w+`, Category: CategoryDjangoManagement},
	{Pattern: `(^|\s)\./manage\.py\s+(?!startapp\b)\w+`, Category: CategoryDjangoManagement},

	// ASGI/WSGI dev servers
	{Pattern: `\buvicorn\b(?!.*--help)`, Category: CategoryASGIDevServer},
	{Pattern: `\bgunicorn\b(?!.*--help)`, Category: CategoryASGIDevServer},
	{Pattern: `\bdaphne\b(?!.*--help)`, Category: CategoryASGIDevServer},

	// Celery worker
	{Pattern: `\bcelery\s+-A\s+\w+\s+worker\b`, Category: CategoryCeleryWorker},
}

// builtinPathTriggers are matched against Write/Edit file paths in order;
// only the first matching trigger produces a warning.
var builtinPathTriggers = []RuleSpec{
	{Pattern: `\.spec\.ts|\.test\.ts`, Category: AdvisoryTestFile},
	{Pattern: `\.vue$`, Category: AdvisoryVueComponent},
	{Pattern: `\.types\.ts|types/.*\.ts`, Category: AdvisoryTypeDefinitions},
	{Pattern: `composables/.*\.ts`, Category: AdvisoryComposable},
}

// pathScope limits advisory triggers to frontend sources.
var pathScope = regexp2.MustCompile(`frontend[/\\]src`, regexp2.IgnoreCase)

// CatalogOptions configures catalog construction.
type CatalogOptions struct {
	// ExtraAllow are project-level allow patterns appended after builtins.
	ExtraAllow []string
	// ExtraBlock are project-level block patterns appended after builtins.
	ExtraBlock []string
}

// NewCatalog builds the catalog from builtin rules plus project extras.
// Project extras are appended after the builtins so builtin ordering, and
// in particular allow-precedence, is never disturbed.
func NewCatalog(opts CatalogOptions) *Catalog {
	allow := compileRules(SourceBuiltin, builtinAllow)
	block := compileRules(SourceBuiltin, builtinBlock)

	for _, p := range opts.ExtraAllow {
		allow = append(allow, compileRules(SourceProject, []RuleSpec{
			{Pattern: p, Category: "project-allow"},
		})...)
	}
	for _, p := range opts.ExtraBlock {
		block = append(block, compileRules(SourceProject, []RuleSpec{
			{Pattern: p, Category: CategoryProjectPolicy},
		})...)
	}

	return &Catalog{
		Commands:     RuleSet{Allow: allow, Block: block},
		PathTriggers: compileRules(SourceBuiltin, builtinPathTriggers),
	}
}

// MatchAdvisory returns the category of the first advisory trigger matching
// path, in declared order. Paths outside frontend/src never trigger.
func (c *Catalog) MatchAdvisory(path string) (string, bool) {
	if strings.TrimSpace(path) == "" {
		return "", false
	}
	if ok, err := pathScope.MatchString(path); err != nil || !ok {
		return "", false
	}
	for i := range c.PathTriggers {
		if c.PathTriggers[i].Matches(path) {
			return c.PathTriggers[i].Category, true
		}
	}
	return "", false
}

// Default catalog built from builtins only.
var defaultCatalog = NewCatalog(CatalogOptions{})

// Default returns the process-wide builtin catalog.
func Default() *Catalog {
	return defaultCatalog
}
