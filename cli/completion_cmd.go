package main

import (
	"fmt"
	"os"
)

func runCompletion(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: rewind completion <bash|zsh|fish|powershell>")
		return 2
	}

	shell := args[0]
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	case "powershell":
		fmt.Print(powershellCompletion)
	default:
		fmt.Fprintf(os.Stderr, "unsupported shell: %s\n", shell)
		fmt.Fprintln(os.Stderr, "Supported shells: bash, zsh, fish, powershell")
		return 2
	}

	return 0
}

const bashCompletion = `# rewind bash completion
_rewind_completions() {
    local cur prev commands
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    commands="audit show manifest verify watch explain serve completion version"

    case "${prev}" in
        rewind)
            COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )
            return 0
            ;;
        --outcome)
            COMPREPLY=( $(compgen -W "allowed blocked warned mocked" -- "${cur}") )
            return 0
            ;;
        --source)
            COMPREPLY=( $(compgen -W "time random uuid network database filesystem compute other" -- "${cur}") )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish powershell" -- "${cur}") )
            return 0
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "--json --outcome --source --limit --verbose --version --debounce --max-per-min --model --base-url --batch-size --output --allowed-paths" -- "${cur}") )
        return 0
    fi

    COMPREPLY=( $(compgen -f -- "${cur}") )
}
complete -F _rewind_completions rewind
`

const zshCompletion = `#compdef rewind
# rewind zsh completion

_rewind() {
    local -a commands
    commands=(
        'audit:Summarize and filter an audit trail export'
        'show:Browse an audit trail export interactively'
        'manifest:Validate and summarize a replay manifest'
        'verify:Verify manifests can drive a faithful replay'
        'watch:Re-verify a manifest whenever it changes'
        'explain:Explain blocked effects using an LLM'
        'serve:Start MCP server on stdio'
        'completion:Generate shell completions'
        'version:Print version and exit'
    )

    _arguments -C \
        '--json[Output as JSON]' \
        '--outcome[Filter by outcome]:outcome:(allowed blocked warned mocked)' \
        '--source[Filter by source]:source:(time random uuid network database filesystem compute other)' \
        '--version[Print version]' \
        '1:command:->cmds' \
        '*::arg:->args'

    case "$state" in
        cmds)
            _describe 'command' commands
            ;;
        args)
            case "${words[1]}" in
                audit|show|manifest|verify|watch|explain)
                    _files
                    ;;
                completion)
                    _values 'shell' bash zsh fish powershell
                    ;;
            esac
            ;;
    esac
}

_rewind "$@"
`

const fishCompletion = `# rewind fish completion
complete -c rewind -n '__fish_use_subcommand' -a 'audit' -d 'Summarize and filter an audit trail export'
complete -c rewind -n '__fish_use_subcommand' -a 'show' -d 'Browse an audit trail export interactively'
complete -c rewind -n '__fish_use_subcommand' -a 'manifest' -d 'Validate and summarize a replay manifest'
complete -c rewind -n '__fish_use_subcommand' -a 'verify' -d 'Verify manifests can drive a faithful replay'
complete -c rewind -n '__fish_use_subcommand' -a 'watch' -d 'Re-verify a manifest whenever it changes'
complete -c rewind -n '__fish_use_subcommand' -a 'explain' -d 'Explain blocked effects using an LLM'
complete -c rewind -n '__fish_use_subcommand' -a 'serve' -d 'Start MCP server on stdio'
complete -c rewind -n '__fish_use_subcommand' -a 'completion' -d 'Generate shell completions'
complete -c rewind -n '__fish_use_subcommand' -a 'version' -d 'Print version and exit'
complete -c rewind -l json -d 'Output as JSON'
complete -c rewind -l outcome -d 'Filter by outcome' -a 'allowed blocked warned mocked'
complete -c rewind -l source -d 'Filter by source' -a 'time random uuid network database filesystem compute other'
complete -c rewind -l version -d 'Print version'
complete -c rewind -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish powershell'
`

const powershellCompletion = `# rewind PowerShell completion
Register-ArgumentCompleter -CommandName rewind -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $commands = @('audit', 'show', 'manifest', 'verify', 'watch', 'explain', 'serve', 'completion', 'version')

    $commands | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`
