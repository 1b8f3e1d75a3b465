package main

import (
	"fmt"
	"strings"
)

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// flagWords lists every spelling of the flags, for word completion.
func flagWords(flags []flagDef) []string {
	var words []string
	for _, f := range flags {
		words = append(words, "--"+f.Name)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func bashFiles(exts []string) string {
	return fmt.Sprintf("compgen -f -X '!*.@(%s)' -- \"$cur\"", strings.Join(exts, "|"))
}

func bashWords(words []string) string {
	return fmt.Sprintf("compgen -W \"%s\" -- \"$cur\"", strings.Join(words, " "))
}

func bashScript(cmds []commandDef) string {
	names := commandNames(cmds)
	var b strings.Builder

	b.WriteString("# bash completion for mkresume\n")
	b.WriteString("_mkresume_completions() {\n")
	b.WriteString("    local cur prev cmd i\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"\"\n")
	b.WriteString("    for ((i=1; i<COMP_CWORD; i++)); do\n")
	b.WriteString("        case \"${COMP_WORDS[i]}\" in\n")
	fmt.Fprintf(&b, "            %s) cmd=\"${COMP_WORDS[i]}\"; break ;;\n", strings.Join(names, "|"))
	b.WriteString("        esac\n")
	b.WriteString("    done\n\n")

	// A bare first word is a command or a document for the default render.
	b.WriteString("    if [[ -z \"$cmd\" && $COMP_CWORD -eq 1 && \"$cur\" != -* ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(%s) )\n", bashWords(names))
	fmt.Fprintf(&b, "        COMPREPLY+=( $(%s) )\n", bashFiles(yamlExts))
	b.WriteString("        return\n")
	b.WriteString("    fi\n")
	b.WriteString("    [[ -z \"$cmd\" ]] && cmd=render\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		bashCommand(&b, c, names)
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -o filenames -F _mkresume_completions mkresume\n")
	return b.String()
}

func bashCommand(b *strings.Builder, c commandDef, names []string) {
	var arms []string
	for _, f := range c.Flags {
		if f.Kind == valueNone {
			continue
		}
		pattern := "--" + f.Name
		if f.Short != "" {
			pattern += "|-" + f.Short
		}
		reply := "COMPREPLY=()"
		switch f.Kind {
		case valueChoice:
			reply = fmt.Sprintf("COMPREPLY=( $(%s) )", bashWords(f.Choices))
		case valueFile:
			reply = fmt.Sprintf("COMPREPLY=( $(%s) )", bashFiles(f.Exts))
		case valueDir:
			reply = "COMPREPLY=( $(compgen -d -- \"$cur\") )"
		}
		arms = append(arms, fmt.Sprintf("                %s) %s; return ;;\n", pattern, reply))
	}
	if len(arms) > 0 {
		b.WriteString("            case \"$prev\" in\n")
		for _, a := range arms {
			b.WriteString(a)
		}
		b.WriteString("            esac\n")
	}

	if len(c.Flags) > 0 {
		b.WriteString("            if [[ \"$cur\" == -* ]]; then\n")
		fmt.Fprintf(b, "                COMPREPLY=( $(%s) )\n", bashWords(flagWords(c.Flags)))
		b.WriteString("                return\n")
		b.WriteString("            fi\n")
	}
	switch {
	case len(c.DocExts) > 0:
		fmt.Fprintf(b, "            COMPREPLY=( $(%s) )\n", bashFiles(c.DocExts))
	case len(c.Args) > 0:
		fmt.Fprintf(b, "            COMPREPLY=( $(%s) )\n", bashWords(c.Args))
	case c.Name == "help":
		fmt.Fprintf(b, "            COMPREPLY=( $(%s) )\n", bashWords(names))
	}
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

var zshEscaper = strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)

func zshAction(f flagDef) string {
	switch f.Kind {
	case valueNone:
		return ""
	case valueChoice:
		return fmt.Sprintf(":%s:(%s)", f.Name, strings.Join(f.Choices, " "))
	case valueFile:
		return fmt.Sprintf(":file:_files -g \"*.(%s)\"", strings.Join(f.Exts, "|"))
	case valueDir:
		return ":directory:_files -/"
	default:
		return ":value: "
	}
}

func zshFlagSpec(f flagDef) string {
	desc := zshEscaper.Replace(f.Usage)
	if f.Short == "" {
		return fmt.Sprintf("'--%s[%s]%s'", f.Name, desc, zshAction(f))
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Name, f.Short, f.Name, desc, zshAction(f))
}

func zshArguments(b *strings.Builder, c commandDef, indent string) {
	specs := make([]string, 0, len(c.Flags)+1)
	for _, f := range c.Flags {
		specs = append(specs, zshFlagSpec(f))
	}
	switch {
	case len(c.DocExts) > 0:
		specs = append(specs, fmt.Sprintf("'*:document:_files -g \"*.(%s)\"'", strings.Join(c.DocExts, "|")))
	case len(c.Args) > 0:
		specs = append(specs, fmt.Sprintf("'1:%s:(%s)'", c.Name, strings.Join(c.Args, " ")))
	case c.Name == "help":
		specs = append(specs, "'1:command:_mkresume_commands'")
	}
	if len(specs) == 0 {
		return
	}
	fmt.Fprintf(b, "%s_arguments \\\n", indent)
	for i, s := range specs {
		b.WriteString(indent + "    " + s)
		if i < len(specs)-1 {
			b.WriteString(" \\")
		}
		b.WriteByte('\n')
	}
}

func zshScript(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("#compdef mkresume\n\n")
	b.WriteString("_mkresume_commands() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscaper.Replace(c.Usage))
	}
	b.WriteString("    )\n")
	b.WriteString("    _describe 'command' commands\n")
	b.WriteString("}\n\n")

	b.WriteString("_mkresume() {\n")
	b.WriteString("    local curcontext=\"$curcontext\" state line\n")
	b.WriteString("    typeset -A opt_args\n\n")
	b.WriteString("    _arguments -C \\\n")
	b.WriteString("        '1: :->command' \\\n")
	b.WriteString("        '*:: :->args'\n\n")
	b.WriteString("    case $state in\n")
	b.WriteString("        command)\n")
	b.WriteString("            _mkresume_commands\n")
	fmt.Fprintf(&b, "            _files -g '*.(%s)'\n", strings.Join(yamlExts, "|"))
	b.WriteString("            ;;\n")
	b.WriteString("        args)\n")
	b.WriteString("            case $line[1] in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "                %s)\n", c.Name)
		zshArguments(&b, c, "                    ")
		b.WriteString("                    ;;\n")
	}
	b.WriteString("            esac\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _mkresume mkresume\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func fishQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func fishScript(cmds []commandDef) string {
	names := strings.Join(commandNames(cmds), " ")
	var b strings.Builder

	b.WriteString("# fish completion for mkresume\n\n")
	b.WriteString("function __fish_mkresume_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    for c in $cmd[2..-1]\n")
	fmt.Fprintf(&b, "        if contains -- $c %s\n", names)
	b.WriteString("            return 1\n")
	b.WriteString("        end\n")
	b.WriteString("    end\n")
	b.WriteString("    return 0\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_mkresume_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    contains -- $argv[1] $cmd\n")
	b.WriteString("end\n\n")

	b.WriteString("complete -c mkresume -f\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mkresume -n __fish_mkresume_needs_command -a %s -d %s\n", c.Name, fishQuote(c.Usage))
	}

	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_mkresume_using_command %s'", c.Name)
		if c.Name == "render" {
			// render is the default command
			cond = "'__fish_mkresume_needs_command; or __fish_mkresume_using_command render'"
		}
		b.WriteByte('\n')
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c mkresume -n %s -l %s", cond, f.Name)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			switch f.Kind {
			case valueChoice:
				fmt.Fprintf(&b, " -x -a %s", fishQuote(strings.Join(f.Choices, " ")))
			case valueFile:
				fmt.Fprintf(&b, " -r -k -a '(__fish_complete_suffix .%s)'", f.Exts[0])
			case valueDir:
				b.WriteString(" -x -a '(__fish_complete_directories)'")
			case valueFree:
				b.WriteString(" -x")
			}
			fmt.Fprintf(&b, " -d %s\n", fishQuote(f.Usage))
		}
		switch {
		case len(c.DocExts) > 0:
			for _, ext := range c.DocExts {
				fmt.Fprintf(&b, "complete -c mkresume -n %s -k -a '(__fish_complete_suffix .%s)'\n", cond, ext)
			}
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "complete -c mkresume -n %s -a %s\n", cond, fishQuote(strings.Join(c.Args, " ")))
		case c.Name == "help":
			fmt.Fprintf(&b, "complete -c mkresume -n %s -a %s\n", cond, fishQuote(names))
		}
	}
	return b.String()
}
