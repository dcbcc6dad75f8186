package policy

// Guidance text shown when a block rule matches. Every message names the
// sanctioned compose-based alternative so the agent can self-correct.
var blockMessages = map[string]string{
	CategoryFrontendDevServer: `❌ BLOCKED: frontend dev server

This service is already running in Docker.

✅ Instead use:
  - View logs: docker compose logs -f frontend
  - Restart: docker compose restart frontend
  - Build: docker compose run --rm frontend npm run build
`,
	CategoryDjangoRunserver: `❌ BLOCKED: python manage.py runserver

This service is already running in Docker.

✅ Instead use:
  - View logs: docker compose logs -f django
  - Restart: docker compose restart django
  - Shell: docker compose run --rm django python manage.py shell
`,
	CategoryDjangoManagement: `❌ BLOCKED: python manage.py <command>

Django management commands require the Postgres database running in Docker.

✅ Instead use:
  - Migrations: docker compose run --rm django python manage.py makemigrations
  - Migrate: docker compose run --rm django python manage.py migrate
  - Shell: docker compose run --rm django python manage.py shell
  - Create superuser: docker compose run --rm django python manage.py createsuperuser
  - Custom commands: docker compose run --rm django python manage.py <command>

⚠️  EXCEPTION: Only 'startapp' runs locally (for file ownership):
  - Create app: python manage.py startapp <app_name>
`,
	CategoryASGIDevServer: `❌ BLOCKED: uvicorn/gunicorn dev server

This service is already running in Docker.

✅ Instead use:
  - View logs: docker compose logs -f backend
  - Restart: docker compose restart backend
  - Run commands: docker compose run --rm backend <command>
`,
	CategoryCeleryWorker: `❌ BLOCKED: celery worker

Celery worker is already running in Docker.

✅ Instead use:
  - View logs: docker compose logs -f celery
  - Restart: docker compose restart celery
  - Inspect: docker compose exec celery celery -A <app> inspect active
`,
	CategoryProjectPolicy: `❌ BLOCKED: project policy

This command is blocked by a project rule in .agentgate/config.toml.
Run it through docker compose instead, or ask an operator to add a
narrower allow rule.
`,
}

// fallbackBlockMessage covers a block without a recognized category. The
// command catalog's categories are a closed set so this should not happen,
// but a block must never render an empty message.
const fallbackBlockMessage = `❌ BLOCKED

This command conflicts with Docker services already running.

✅ Run it through docker compose instead:
  docker compose run --rm <service> <command>
`

// Advisory text for file-path triggers. Informational only, never blocks.
var advisoryMessages = map[string]string{
	AdvisoryTestFile: `⚠️  TYPESCRIPT QUALITY REMINDER: Writing Test File

Common test patterns that cause TypeScript errors:

1. Template Refs - Cast to proper HTML type:
   ✅ (wrapper.find('[data-test="input"]').element as HTMLInputElement).value

2. Component Instance Access - Use 'any' in tests:
   ✅ await (wrapper.vm as any).methodName()

3. Mock Composables - Match real return types:
   ✅ Use computed(() => value) for computed refs, not ref(value)

4. Complete Mocks - Include ALL required properties:
   💡 Hover over type in VSCode to see all required fields

Reference: frontend/TYPESCRIPT_PATTERNS.md
`,
	AdvisoryVueComponent: `⚠️  TYPESCRIPT QUALITY REMINDER: Writing Vue Component

Before writing component code:

1. Run type-check to ensure codebase is clean:
   docker compose run --rm frontend npm run type-check

2. If creating types, ensure unions/enums are COMPLETE:
   ✅ Add ALL possible values upfront to avoid future errors

3. API calls should use generic types:
   ✅ api.get<User>('/users/me/') not api.get('/users/me/')

Reference: frontend/TYPESCRIPT_PATTERNS.md
`,
	AdvisoryTypeDefinitions: `⚠️  TYPESCRIPT QUALITY REMINDER: Writing Type Definitions

Type safety checklist:

1. Union types - Include ALL possible values now, not later
2. Interfaces - Mark optional fields with '?'
3. Enums - Add new values as features are created
4. null vs undefined - Be consistent (prefer null)

Common issue: Adding type values after code uses them
✅ Update type FIRST, then use new values in code

Reference: frontend/TYPESCRIPT_PATTERNS.md - Pattern 7
`,
	AdvisoryComposable: `⚠️  TYPESCRIPT QUALITY REMINDER: Writing Composable

Composable type safety:

1. Computed properties - Return ComputedRef<T>, not Ref<T>
2. Refs - Use Ref<T> for mutable state
3. Return types - Explicitly type the return object
4. Generic types - Use <T> for reusable composables

Common issue: Mixing ref() and computed() incorrectly
✅ If logic computes a value, use computed(), not ref()

Reference: frontend/TYPESCRIPT_PATTERNS.md - Pattern 6
`,
}

// ResolveBlockMessage returns the guidance text for a block category.
// Unknown categories get the generic fallback, never an empty string.
func ResolveBlockMessage(category string) string {
	if msg, ok := blockMessages[category]; ok {
		return msg
	}
	return fallbackBlockMessage
}

// ResolveAdvisoryMessage returns the advisory text for a path trigger
// category, or false if the category has no message.
func ResolveAdvisoryMessage(category string) (string, bool) {
	msg, ok := advisoryMessages[category]
	return msg, ok
}
