// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	CanonDirNotFoundId Id = iota + 1
	ManifestNotFoundId
	ManifestParseErrorId
	PlaceholderUnresolvedId
	ProfileRootMissingId
	NoProfilesFoundId
	ConfigLoadFailedId
	BackupStoreCorruptId
	BackupRunNotFoundId
	RenderedShellInvalidId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	canonDirNotFoundIssue = &Issue{
		id: CanonDirNotFoundId,
		mdMsg: `
# Canon directory not found!

canonctl needs a canon directory holding the canonical templates and
the canon.yaml manifest, but the configured path does not exist.

## Things you can try:
- Check the 'canon_dir' value in your configuration:
~~~
$ canonctl config show
~~~

- Create a canon directory with a starter manifest:
~~~
$ canonctl config init
~~~

- Point canonctl at an existing canon directory:
~~~
$ canonctl status --canon /path/to/canon
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No canon manifest found!

The canon directory exists but contains no canon.yaml manifest.

## Expected layout:
~~~
canon/
  canon.yaml        # manifest: templates -> per-profile destinations
  wslconfig.tmpl
  bashrc.tmpl
  docker-settings.json.tmpl
~~~

## Example manifest:
~~~yaml
targets:
  - name: wslconfig
    template: wslconfig.tmpl
    dest: .wslconfig
  - name: bashrc
    template: bashrc.tmpl
    dest: .bashrc
    format: bash
  - name: docker-settings
    template: docker-settings.json.tmpl
    dest: AppData/Roaming/Docker/settings.json
    format: json
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse canon manifest!

Your canon.yaml contains syntax errors or invalid configuration.

## Common issues:
- Invalid YAML syntax (bad indentation, missing colons)
- Unknown field names
- A target missing its required 'template' or 'dest' field
- Duplicate target names

## Things you can try:
- Check the error message above for the specific field
- Run with verbose mode for more details:
~~~
$ canonctl --verbose status
~~~`,
	}

	placeholderUnresolvedIssue = &Issue{
		id: PlaceholderUnresolvedId,
		mdMsg: `
# Unresolved placeholders!

A canonical template references placeholders that canonctl cannot
resolve on this machine.

## Built-in placeholders:
- **WSL_MEMORY_GB**: half of physical RAM, clamped to 2..16 GiB
- **WSL_PROCESSORS**: 80% of logical cores, at least 2
- **HOSTNAME**, **USERNAME**

## Things you can try:
- Define custom values in your configuration:
~~~cue
placeholders: {
	GIT_EMAIL: "you@example.com"
}
~~~

- Inspect the resolved placeholder set:
~~~
$ canonctl render --values
~~~`,
	}

	profileRootMissingIssue = &Issue{
		id: ProfileRootMissingId,
		mdMsg: `
# Profile root not found!

A configured profile root directory does not exist or is not readable.

## Things you can try:
- Check the 'profile_roots' value in your configuration:
~~~
$ canonctl config show
~~~

- On WSL, Windows user homes usually mount under /mnt/c/Users:
~~~cue
profile_roots: ["/mnt/c/Users"]
~~~

- Pin explicit profiles instead of scanning a root:
~~~cue
profiles: ["/mnt/c/Users/alice"]
~~~`,
	}

	noProfilesFoundIssue = &Issue{
		id: NoProfilesFoundId,
		mdMsg: `
# No profiles found!

Profile discovery produced an empty set: nothing to check or repair.

## Things you can try:
- Verify the profile roots contain user home directories
- Review 'exclude_profiles' globs; they may be matching everything
- Pin profiles explicitly with the 'profiles' configuration key`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your config.cue could not be loaded or failed schema validation.

## Things you can try:
- Check the error message above for the failing field
- Validate your CUE syntax
- Recreate the default configuration:
~~~
$ canonctl config init
~~~

- Show where canonctl looks for its config file:
~~~
$ canonctl config path
~~~`,
	}

	backupStoreCorruptIssue = &Issue{
		id: BackupStoreCorruptId,
		mdMsg: `
# Backup store is damaged!

A backup run directory is missing its index.toml or the index does not
match the stored files.

## Things you can try:
- List the runs canonctl can still read:
~~~
$ canonctl backups list
~~~

- Remove damaged run directories from the backup store by hand; each
  run lives in its own directory and can be deleted independently
- Prune old runs:
~~~
$ canonctl backups prune --keep 10
~~~`,
	}

	backupRunNotFoundIssue = &Issue{
		id: BackupRunNotFoundId,
		mdMsg: `
# Backup run not found!

The run ID you specified does not exist in the backup store.

## Things you can try:
- List available runs and their IDs:
~~~
$ canonctl backups list
~~~

- Use the full run ID as printed by 'backups list'`,
	}

	renderedShellInvalidIssue = &Issue{
		id: RenderedShellInvalidId,
		mdMsg: `
# Rendered shell file is invalid!

After placeholder substitution, a shell target (e.g. .bashrc) no longer
parses as valid shell. canonctl refuses to write broken shell config.

## Common causes:
- A placeholder value containing unbalanced quotes
- A template edit that broke quoting or a heredoc

## Things you can try:
- Render the target and inspect it:
~~~
$ canonctl render bashrc
~~~

- Check custom placeholder values for special characters`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

canonctl could not read or write a profile's configuration file.

## Common causes:
- Repairing another user's profile without sufficient privileges
- A read-only mount (e.g. /mnt/c without metadata enabled on WSL)

## Things you can try:
- Re-run with elevated privileges
- Check mount options for the profile root
- Exclude profiles you cannot write to with 'exclude_profiles'`,
	}

	issues = map[Id]*Issue{
		canonDirNotFoundIssue.Id():      canonDirNotFoundIssue,
		manifestNotFoundIssue.Id():      manifestNotFoundIssue,
		manifestParseErrorIssue.Id():    manifestParseErrorIssue,
		placeholderUnresolvedIssue.Id(): placeholderUnresolvedIssue,
		profileRootMissingIssue.Id():    profileRootMissingIssue,
		noProfilesFoundIssue.Id():       noProfilesFoundIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		backupStoreCorruptIssue.Id():    backupStoreCorruptIssue,
		backupRunNotFoundIssue.Id():     backupRunNotFoundIssue,
		renderedShellInvalidIssue.Id():  renderedShellInvalidIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
