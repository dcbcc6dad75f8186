package policy

import (
	"strings"
	"testing"
)

func TestBuiltinCatalog_CommandDecisions(t *testing.T) {
	catalog := Default()

	tests := []struct {
		command  string
		decision Decision
		category string
	}{
		// Frontend dev servers
		{"npm run dev", DecisionBlock, CategoryFrontendDevServer},
		{"npm run serve", DecisionBlock, CategoryFrontendDevServer},
		{"yarn dev", DecisionBlock, CategoryFrontendDevServer},
		{"pnpm serve", DecisionBlock, CategoryFrontendDevServer},
		{"vite", DecisionBlock, CategoryFrontendDevServer},
		{"vite --port 3000", DecisionBlock, CategoryFrontendDevServer},

		// Build and test operations run locally
		{"npm run build", DecisionAllow, ""},
		{"npm run test", DecisionAllow, ""},
		{"yarn build", DecisionAllow, ""},
		{"vite build", DecisionAllow, ""},

		// Django dev server
		{"python manage.py runserver", DecisionBlock, CategoryDjangoRunserver},
		{"python manage.py runserver 0.0.0.0:8000", DecisionBlock, CategoryDjangoRunserver},
		{"./manage.py runserver", DecisionBlock, CategoryDjangoRunserver},

		// Management commands need the compose database, except startapp
		{"python manage.py migrate", DecisionBlock, CategoryDjangoManagement},
		{"python manage.py makemigrations", DecisionBlock, CategoryDjangoManagement},
		{"python manage.py shell", DecisionBlock, CategoryDjangoManagement},
		{"./manage.py migrate", DecisionBlock, CategoryDjangoManagement},
		{"python manage.py startapp blog", DecisionAllow, ""},
		{"./manage.py startapp blog", DecisionAllow, ""},

		// Anything through compose is sanctioned
		{"docker compose run --rm django python manage.py migrate", DecisionAllow, ""},
		{"docker compose up -d", DecisionAllow, ""},
		{"docker-compose restart frontend", DecisionAllow, ""},
		{"docker logs backend", DecisionAllow, ""},

		// ASGI/WSGI dev servers
		{"uvicorn app.main:app --reload", DecisionBlock, CategoryASGIDevServer},
		{"gunicorn config.wsgi", DecisionBlock, CategoryASGIDevServer},
		{"daphne project.asgi:application", DecisionBlock, CategoryASGIDevServer},
		{"uvicorn --help", DecisionAllow, ""},
		{"gunicorn --help", DecisionAllow, ""},

		// Celery worker
		{"celery -A project worker -l info", DecisionBlock, CategoryCeleryWorker},

		// Package management
		{"npm install axios", DecisionAllow, ""},
		{"npm ci", DecisionAllow, ""},
		{"pip install -r requirements.txt", DecisionAllow, ""},

		// Unrelated commands default to allow
		{"git status", DecisionAllow, ""},
		{"ls -la", DecisionAllow, ""},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			result := catalog.Commands.Classify(tt.command)
			if result.Decision != tt.decision {
				t.Fatalf("Classify(%q): decision=%s want %s (pattern %q)",
					tt.command, result.Decision, tt.decision, result.MatchedPattern)
			}
			if result.Category != tt.category {
				t.Fatalf("Classify(%q): category=%q want %q",
					tt.command, result.Category, tt.category)
			}
		})
	}
}

// The startapp exemption is expressed twice: the management block pattern
// carries an embedded (?!startapp\b) exception AND a narrow allow rule
// exists. Each must hold on its own so an incorrect edit to one cannot
// silently break the exemption.
func TestStartappExemption_BothRulesIndependent(t *testing.T) {
	catalog := Default()

	// The allow rule alone matches startapp.
	allowMatched := false
	for i := range catalog.Commands.Allow {
		if catalog.Commands.Allow[i].Category == "startapp" &&
			catalog.Commands.Allow[i].Matches("python manage.py startapp blog") {
			allowMatched = true
		}
	}
	if !allowMatched {
		t.Fatalf("no explicit allow rule matches startapp")
	}

	// The block pattern alone does not match startapp but matches
	// every other subcommand.
	for i := range catalog.Commands.Block {
		if catalog.Commands.Block[i].Category != CategoryDjangoManagement {
			continue
		}
		if catalog.Commands.Block[i].Matches("python manage.py startapp blog") {
			t.Fatalf("management block rule %q matches startapp", catalog.Commands.Block[i].Pattern)
		}
	}
	blockMatched := false
	for i := range catalog.Commands.Block {
		if catalog.Commands.Block[i].Category == CategoryDjangoManagement &&
			catalog.Commands.Block[i].Matches("python manage.py createsuperuser") {
			blockMatched = true
		}
	}
	if !blockMatched {
		t.Fatalf("management block rule does not match non-exempt subcommand")
	}
}

func TestCatalog_ProjectExtras(t *testing.T) {
	catalog := NewCatalog(CatalogOptions{
		ExtraBlock: []string{`\bterraform\s+apply\b`},
		ExtraAllow: []string{`\bterraform\s+plan\b`},
	})

	result := catalog.Commands.Classify("terraform apply -auto-approve")
	if result.Decision != DecisionBlock || result.Category != CategoryProjectPolicy {
		t.Fatalf("extra block: decision=%s category=%s", result.Decision, result.Category)
	}

	result = catalog.Commands.Classify("terraform plan")
	if result.Decision != DecisionAllow {
		t.Fatalf("extra allow: decision=%s", result.Decision)
	}

	// Builtins still apply and still precede extras.
	result = catalog.Commands.Classify("npm run dev")
	if result.Category != CategoryFrontendDevServer {
		t.Fatalf("builtin ordering disturbed: category=%s", result.Category)
	}
}

func TestMatchAdvisory(t *testing.T) {
	catalog := Default()

	tests := []struct {
		path     string
		category string
		matched  bool
	}{
		{"frontend/src/components/Foo.vue", AdvisoryVueComponent, true},
		{"frontend/src/stores/user.spec.ts", AdvisoryTestFile, true},
		{"frontend/src/composables/useAuth.ts", AdvisoryComposable, true},
		{`frontend\src\components\Foo.vue`, AdvisoryVueComponent, true},

		// Outside frontend/src nothing triggers
		{"backend/models.py", "", false},
		{"frontend/vite.config.ts", "", false},
		{"docs/notes.vue", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		category, matched := catalog.MatchAdvisory(tt.path)
		if matched != tt.matched || category != tt.category {
			t.Fatalf("MatchAdvisory(%q)=(%q,%v) want (%q,%v)",
				tt.path, category, matched, tt.category, tt.matched)
		}
	}
}

func TestMatchAdvisory_TypeDefinitions(t *testing.T) {
	catalog := Default()

	category, matched := catalog.MatchAdvisory("frontend/src/types/api.types.ts")
	if !matched {
		t.Fatalf("expected a trigger")
	}
	if category != AdvisoryTypeDefinitions {
		t.Fatalf("category=%q want %q", category, AdvisoryTypeDefinitions)
	}
}

// A path can satisfy several triggers; only the first in declared order
// produces a warning.
func TestMatchAdvisory_SingleMatchFirstWins(t *testing.T) {
	catalog := Default()

	// Matches both the test-file trigger and the type-definitions trigger.
	category, matched := catalog.MatchAdvisory("frontend/src/types/user.spec.ts")
	if !matched {
		t.Fatalf("expected a trigger")
	}
	if category != AdvisoryTestFile {
		t.Fatalf("category=%q want first declared trigger %q", category, AdvisoryTestFile)
	}
}

func TestComputeHash_DeterministicAndSensitive(t *testing.T) {
	a := NewCatalog(CatalogOptions{})
	b := NewCatalog(CatalogOptions{})
	if a.ComputeHash() != b.ComputeHash() {
		t.Fatalf("hash not deterministic")
	}

	c := NewCatalog(CatalogOptions{ExtraBlock: []string{`\bfoo\b`}})
	if a.ComputeHash() == c.ComputeHash() {
		t.Fatalf("hash did not change with extra rule")
	}
}

func TestExportCatalog(t *testing.T) {
	export := Default().ExportCatalog()

	if export.Metadata.RuleCount == 0 {
		t.Fatalf("empty export")
	}
	if export.SHA256 != Default().ComputeHash() {
		t.Fatalf("export hash mismatch")
	}
	if len(export.Commands.Allow) != len(Default().Commands.Allow) {
		t.Fatalf("allow count mismatch")
	}

	// Declaration order survives export: ordering is a policy invariant.
	if export.Commands.Block[0].Category != CategoryFrontendDevServer {
		t.Fatalf("first block rule category=%q", export.Commands.Block[0].Category)
	}

	data, err := Default().ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if !strings.Contains(data, `"sha256"`) {
		t.Fatalf("json export missing hash")
	}
}
