package fsservice

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/localrivet/mcp-filesystem/server"
	"github.com/localrivet/mcp-filesystem/util/validator"
)

// ToolHost is the subset of server.Server that RegisterTools needs.
// Matches server.Server's fluent Tool method so registration doesn't
// pull in the whole interface surface.
type ToolHost interface {
	Tool(name string, description string, handler interface{}) server.Server
}

// RegisterTools binds every tool in the spec's tool-call surface to svc,
// registering each against host. Every handler is wrapped so each
// invocation gets a request ID logged alongside the tool name, giving an
// operator a correlation handle independent of whatever ID the transport
// layer assigns the underlying JSON-RPC call.
func RegisterTools(host ToolHost, svc *Service) {
	instrumented := loggingHost{host: host, svc: svc}
	registerReadTools(instrumented, svc)
	registerWriteTools(instrumented, svc)
	registerSearchTools(instrumented, svc)
}

// loggingHost wraps a ToolHost, instrumenting every registered handler
// with request-ID logging before delegating to the real host.
type loggingHost struct {
	host ToolHost
	svc  *Service
}

func (h loggingHost) Tool(name string, description string, handler interface{}) server.Server {
	return h.host.Tool(name, description, instrument(name, h.svc, handler))
}

// instrument wraps handler, whose signature is always
// func(*server.Context, ArgsT) (interface{}, error) for some ArgsT, with a
// call that logs a fresh request ID and enforces the `required` struct tags
// on ArgsT before invoking the original handler. reflect.MakeFunc lets this
// work uniformly across every ArgsT without a per-tool wrapper.
func instrument(name string, svc *Service, handler interface{}) interface{} {
	handlerValue := reflect.ValueOf(handler)
	handlerType := handlerValue.Type()

	wrapped := reflect.MakeFunc(handlerType, func(args []reflect.Value) []reflect.Value {
		svc.log().Debug("tool call", "tool", name, "request_id", uuid.NewString())

		if len(args) > 1 {
			if err := validator.Arguments(args[1].Interface()); err != nil {
				errVal := reflect.New(handlerType.Out(1)).Elem()
				errVal.Set(reflect.ValueOf(fmt.Errorf("%s: %w", name, err)))
				return []reflect.Value{reflect.Zero(handlerType.Out(0)), errVal}
			}
		}
		return handlerValue.Call(args)
	})
	return wrapped.Interface()
}

func toolError(err error) (interface{}, error) {
	return nil, err
}

// --- read/inspect ---

type readTextFileArgs struct {
	Path            string `json:"path" required:"true"`
	WithLineNumbers bool   `json:"with_line_numbers,omitempty"`
}

type readMultipleTextFilesArgs struct {
	Paths []string `json:"paths" required:"true"`
}

type readMediaFileArgs struct {
	Path     string `json:"path" required:"true"`
	MaxBytes *int64 `json:"max_bytes,omitempty"`
}

type readMultipleMediaFilesArgs struct {
	Paths    []string `json:"paths" required:"true"`
	MaxBytes *int64   `json:"max_bytes,omitempty"`
}

type readFileLinesArgs struct {
	Path   string `json:"path" required:"true"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit,omitempty"`
}

type headFileArgs struct {
	Path  string `json:"path" required:"true"`
	Lines int    `json:"lines"`
}

type tailFileArgs struct {
	Path  string `json:"path" required:"true"`
	Lines int    `json:"lines"`
}

type pathArgs struct {
	Path string `json:"path" required:"true"`
}

type directoryTreeArgs struct {
	Path     string `json:"path" required:"true"`
	MaxDepth int    `json:"max_depth,omitempty"`
	MaxFiles int    `json:"max_files,omitempty"`
}

func registerReadTools(host ToolHost, svc *Service) {
	host.Tool("read_text_file", "Read a text file, optionally with line numbers.",
		func(ctx *server.Context, args readTextFileArgs) (interface{}, error) {
			content, err := svc.ReadTextFile(args.Path, args.WithLineNumbers)
			if err != nil {
				return toolError(err)
			}
			return content, nil
		})

	host.Tool("read_multiple_text_files", "Read several text files at once.",
		func(ctx *server.Context, args readMultipleTextFilesArgs) (interface{}, error) {
			out := make(map[string]string, len(args.Paths))
			for _, p := range args.Paths {
				content, err := svc.ReadTextFile(p, false)
				if err != nil {
					out[p] = fmt.Sprintf("error: %v", err)
					continue
				}
				out[p] = content
			}
			return out, nil
		})

	host.Tool("read_media_file", "Read an image or audio file as base64.",
		func(ctx *server.Context, args readMediaFileArgs) (interface{}, error) {
			mime, encoded, err := svc.ReadMediaFile(args.Path, args.MaxBytes)
			if err != nil {
				return toolError(err)
			}
			return map[string]string{"mime": mime, "data": encoded}, nil
		})

	host.Tool("read_multiple_media_files", "Read several image/audio files as base64.",
		func(ctx *server.Context, args readMultipleMediaFilesArgs) (interface{}, error) {
			type entry struct {
				Mime string `json:"mime,omitempty"`
				Data string `json:"data,omitempty"`
				Err  string `json:"error,omitempty"`
			}
			out := make(map[string]entry, len(args.Paths))
			for _, p := range args.Paths {
				mime, encoded, err := svc.ReadMediaFile(p, args.MaxBytes)
				if err != nil {
					out[p] = entry{Err: err.Error()}
					continue
				}
				out[p] = entry{Mime: mime, Data: encoded}
			}
			return out, nil
		})

	host.Tool("read_file_lines", "Read a range of lines from a file.",
		func(ctx *server.Context, args readFileLinesArgs) (interface{}, error) {
			limit := args.Limit
			if limit == 0 {
				limit = -1
			}
			lines, err := svc.ReadLines(args.Path, args.Offset, limit)
			if err != nil {
				return toolError(err)
			}
			return strings.Join(lines, ""), nil
		})

	host.Tool("head_file", "Read the first N lines of a file.",
		func(ctx *server.Context, args headFileArgs) (interface{}, error) {
			lines, err := svc.ReadHeadLines(args.Path, args.Lines)
			if err != nil {
				return toolError(err)
			}
			return strings.Join(lines, ""), nil
		})

	host.Tool("tail_file", "Read the last N lines of a file.",
		func(ctx *server.Context, args tailFileArgs) (interface{}, error) {
			lines, err := svc.ReadTailLines(args.Path, args.Lines)
			if err != nil {
				return toolError(err)
			}
			return strings.Join(lines, ""), nil
		})

	host.Tool("get_file_info", "Get metadata about a file or directory.",
		func(ctx *server.Context, args pathArgs) (interface{}, error) {
			info, err := svc.GetFileInfo(args.Path)
			if err != nil {
				return toolError(err)
			}
			return info, nil
		})

	host.Tool("list_directory", "List the immediate contents of a directory.",
		func(ctx *server.Context, args pathArgs) (interface{}, error) {
			entries, err := svc.ListDirectory(args.Path)
			if err != nil {
				return toolError(err)
			}
			return entries, nil
		})

	host.Tool("list_directory_with_sizes", "List a directory's contents including file sizes.",
		func(ctx *server.Context, args pathArgs) (interface{}, error) {
			entries, err := svc.ListDirectory(args.Path)
			if err != nil {
				return toolError(err)
			}
			return entries, nil
		})

	host.Tool("directory_tree", "Build a JSON tree of a directory's contents.",
		func(ctx *server.Context, args directoryTreeArgs) (interface{}, error) {
			maxDepth := args.MaxDepth
			if maxDepth == 0 {
				maxDepth = -1
			}
			maxFiles := args.MaxFiles
			if maxFiles == 0 {
				maxFiles = -1
			}
			result, err := svc.DirectoryTree(args.Path, maxDepth, maxFiles)
			if err != nil {
				return toolError(err)
			}
			tree, err := MarshalTree(result)
			if err != nil {
				return toolError(err)
			}
			return map[string]interface{}{
				"tree":              json.RawMessage(tree),
				"max_depth_reached": result.MaxDepthReached,
			}, nil
		})

	host.Tool("list_allowed_directories", "List the directories this server is allowed to touch.",
		func(ctx *server.Context, args struct{}) (interface{}, error) {
			return svc.ListAllowedDirectories(), nil
		})
}

// --- write/mutate ---

type writeFileArgs struct {
	Path    string `json:"path" required:"true"`
	Content string `json:"content"`
}

type moveFileArgs struct {
	Source      string `json:"source" required:"true"`
	Destination string `json:"destination" required:"true"`
}

type editFileArgs struct {
	Path   string          `json:"path" required:"true"`
	Edits  []EditOperation `json:"edits" required:"true"`
	DryRun bool            `json:"dry_run,omitempty"`
	SaveTo string          `json:"save_to,omitempty"`
}

type zipFilesArgs struct {
	InputFiles    []string `json:"input_files" required:"true"`
	TargetZipFile string   `json:"target_zip_file" required:"true"`
}

type zipDirectoryArgs struct {
	InputDirectory string `json:"input_directory" required:"true"`
	Pattern        string `json:"pattern,omitempty"`
	TargetZipFile  string `json:"target_zip_file" required:"true"`
}

type unzipFileArgs struct {
	ZipFile    string `json:"zip_file" required:"true"`
	TargetPath string `json:"target_path" required:"true"`
}

func registerWriteTools(host ToolHost, svc *Service) {
	host.Tool("write_file", "Write content to a file, creating it if needed.",
		func(ctx *server.Context, args writeFileArgs) (interface{}, error) {
			if err := svc.WriteFile(args.Path, args.Content); err != nil {
				return toolError(err)
			}
			return map[string]bool{"success": true}, nil
		})

	host.Tool("create_directory", "Create a directory and any missing parents.",
		func(ctx *server.Context, args pathArgs) (interface{}, error) {
			if err := svc.CreateDirectory(args.Path); err != nil {
				return toolError(err)
			}
			return map[string]bool{"success": true}, nil
		})

	host.Tool("move_file", "Move or rename a file.",
		func(ctx *server.Context, args moveFileArgs) (interface{}, error) {
			if err := svc.MoveFile(args.Source, args.Destination); err != nil {
				return toolError(err)
			}
			return map[string]bool{"success": true}, nil
		})

	host.Tool("edit_file", "Apply a sequence of textual edits and return a unified diff.",
		func(ctx *server.Context, args editFileArgs) (interface{}, error) {
			diff, err := svc.ApplyEdits(args.Path, args.Edits, args.DryRun, args.SaveTo)
			if err != nil {
				return toolError(err)
			}
			return diff, nil
		})

	host.Tool("zip_files", "Archive a list of files into a new ZIP.",
		func(ctx *server.Context, args zipFilesArgs) (interface{}, error) {
			size, err := svc.ZipFiles(args.InputFiles, args.TargetZipFile)
			if err != nil {
				return toolError(err)
			}
			return map[string]string{"size": size}, nil
		})

	host.Tool("zip_directory", "Archive a directory's matching files into a new ZIP.",
		func(ctx *server.Context, args zipDirectoryArgs) (interface{}, error) {
			pattern := args.Pattern
			if pattern == "" {
				pattern = "*"
			}
			size, err := svc.ZipDirectory(args.InputDirectory, pattern, args.TargetZipFile)
			if err != nil {
				return toolError(err)
			}
			return map[string]string{"size": size}, nil
		})

	host.Tool("unzip_file", "Extract a ZIP archive into a target directory.",
		func(ctx *server.Context, args unzipFileArgs) (interface{}, error) {
			result, err := svc.UnzipFile(args.ZipFile, args.TargetPath)
			if err != nil {
				return toolError(err)
			}
			return result, nil
		})
}

// --- search/analyze ---

type searchFilesArgs struct {
	Path            string   `json:"path" required:"true"`
	Pattern         string   `json:"pattern" required:"true"`
	ExcludePatterns []string `json:"excludePatterns,omitempty"`
	MinBytes        *int64   `json:"min_bytes,omitempty"`
	MaxBytes        *int64   `json:"max_bytes,omitempty"`
}

type searchFilesContentArgs struct {
	Path            string   `json:"path" required:"true"`
	Pattern         string   `json:"pattern"`
	Query           string   `json:"query" required:"true"`
	IsRegex         bool     `json:"is_regex,omitempty"`
	ExcludePatterns []string `json:"excludePatterns,omitempty"`
	MinBytes        *int64   `json:"min_bytes,omitempty"`
	MaxBytes        *int64   `json:"max_bytes,omitempty"`
}

// isTextFormat reports whether format requests the flattened human-readable
// rendering ("text") instead of the default structured result ("json" or
// unset). Shared by the three analysis tools that accept an output_format
// argument.
func isTextFormat(format string) bool {
	return format == "text"
}

type rootPathArgs struct {
	RootPath     string `json:"root_path" required:"true"`
	OutputFormat string `json:"output_format,omitempty" enum:"json,text"`
}

type findEmptyDirectoriesArgs struct {
	Path            string   `json:"path" required:"true"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
	OutputFormat    string   `json:"output_format,omitempty" enum:"json,text"`
}

type findDuplicateFilesArgs struct {
	RootPath        string   `json:"root_path" required:"true"`
	Pattern         string   `json:"pattern,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
	MinBytes        *int64   `json:"min_bytes,omitempty"`
	MaxBytes        *int64   `json:"max_bytes,omitempty"`
	OutputFormat    string   `json:"output_format,omitempty" enum:"json,text"`
}

func registerSearchTools(host ToolHost, svc *Service) {
	host.Tool("search_files", "Search a directory tree by name pattern.",
		func(ctx *server.Context, args searchFilesArgs) (interface{}, error) {
			entries, err := svc.SearchFiles(args.Path, SearchOptions{
				Pattern:         args.Pattern,
				ExcludePatterns: args.ExcludePatterns,
				MinBytes:        args.MinBytes,
				MaxBytes:        args.MaxBytes,
			})
			if err != nil {
				return toolError(err)
			}
			return entries, nil
		})

	host.Tool("search_files_content", "Search file contents across a directory tree.",
		func(ctx *server.Context, args searchFilesContentArgs) (interface{}, error) {
			results, err := svc.SearchFilesContent(args.Path, args.Query, args.IsRegex, SearchOptions{
				Pattern:         args.Pattern,
				ExcludePatterns: args.ExcludePatterns,
				MinBytes:        args.MinBytes,
				MaxBytes:        args.MaxBytes,
			})
			if err != nil {
				return toolError(err)
			}
			return results, nil
		})

	host.Tool("calculate_directory_size", "Sum the size of every file under a directory.",
		func(ctx *server.Context, args rootPathArgs) (interface{}, error) {
			size, err := svc.CalculateDirectorySize(args.RootPath)
			if err != nil {
				return toolError(err)
			}
			if isTextFormat(args.OutputFormat) {
				return fmt.Sprintf("%d bytes", size), nil
			}
			return map[string]int64{"bytes": size}, nil
		})

	host.Tool("find_empty_directories", "Find directories with no entries.",
		func(ctx *server.Context, args findEmptyDirectoriesArgs) (interface{}, error) {
			dirs, err := svc.FindEmptyDirectories(args.Path, args.ExcludePatterns)
			if err != nil {
				return toolError(err)
			}
			if isTextFormat(args.OutputFormat) {
				if len(dirs) == 0 {
					return "no empty directories found", nil
				}
				return strings.Join(dirs, "\n"), nil
			}
			return dirs, nil
		})

	host.Tool("find_duplicate_files", "Find groups of files with identical content.",
		func(ctx *server.Context, args findDuplicateFilesArgs) (interface{}, error) {
			groups, err := svc.FindDuplicates(args.RootPath, SearchOptions{
				Pattern:         args.Pattern,
				ExcludePatterns: args.ExcludePatterns,
				MinBytes:        args.MinBytes,
				MaxBytes:        args.MaxBytes,
			})
			if err != nil {
				return toolError(err)
			}
			if isTextFormat(args.OutputFormat) {
				if len(groups) == 0 {
					return "no duplicate files found", nil
				}
				var b strings.Builder
				for _, g := range groups {
					fmt.Fprintf(&b, "%d bytes, %d copies:\n", g.Size, len(g.Paths))
					for _, p := range g.Paths {
						fmt.Fprintf(&b, "  %s\n", p)
					}
				}
				return b.String(), nil
			}
			return groups, nil
		})
}
