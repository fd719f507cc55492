package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"jssc/archive"
	"jssc/config"
	"jssc/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	// without destination single stylesheet goes to stdout
	dst := cmd.Args().Get(1)
	if len(dst) != 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	applyFlags(cmd, env.Cfg)
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Stylesheets without BOM and @charset are expected to be UTF-8, old ones
	// may need archaic code page
	cp := cmd.String("charset")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully decoding sources without BOM", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst),
		zap.String("unit", env.Cfg.Conversion.Unit), zap.Bool("dashes", env.Cfg.Conversion.Dashes))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// applyFlags overwrites configuration with values explicitly given on the
// command line.
func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("unit") {
		cfg.Conversion.Unit = cmd.String("unit")
	}
	if cmd.IsSet("dashes") {
		cfg.Conversion.Dashes = cmd.Bool("dashes")
	}
	if cmd.IsSet("sort") {
		cfg.Conversion.SortKeys = cmd.Bool("sort")
	}
	if cmd.IsSet("pretty") {
		cfg.Output.Pretty = cmd.Bool("pretty")
	}
	if cmd.IsSet("export") {
		cfg.Output.Export = cmd.String("export")
	}
}

// process handles the core conversion logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and processes
// accordingly. Path inside archive could be specified as if archive were a
// directory.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if dst, err = destinationDir(dst); err != nil {
				return err
			}
			return processDir(ctx, head, dst, log)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			if dst, err = destinationDir(dst); err != nil {
				return err
			}
			// we need to look inside to see if path makes sense
			tail = filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			return processArchive(ctx, head, tail, dst, log)
		}

		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		return processFile(ctx, head, dst, log)
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

func destinationDir(dst string) (string, error) {
	if len(dst) != 0 {
		return dst, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("unable to get working directory: %w", err)
	}
	return dir, nil
}

// processFile converts single stylesheet. Result goes to standard output when
// "dst" is empty, into "dst" directory when it exists and into "dst" file
// otherwise.
func processFile(ctx context.Context, path, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	if _, err := converterFor(path); err != nil {
		return err
	}
	enc, err := sniffSource(path)
	if err != nil {
		return fmt.Errorf("unable to check file type: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	src := filepath.Base(path)
	if err := env.Rpt.StoreCopy("sources/"+src, path); err != nil {
		log.Warn("Unable to store source in report", zap.String("file", path), zap.Error(err))
	}

	out, err := convertStylesheet(ctx, file, enc, src, log)
	if err != nil {
		return err
	}

	if len(dst) == 0 {
		if _, err := env.Stdout.Write(out); err != nil {
			return fmt.Errorf("unable to write result: %w", err)
		}
		return nil
	}
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		dst = buildOutputPath(src, dst, env)
	}
	return writeResult(dst, out, env, log)
}

// processDir walks directory tree converting every stylesheet it has
// converter for. Failures are reported together when walk is over.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) error {
	var (
		count int
		errs  error
	)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !isConvertible(path) {
			log.Debug("Skipping file, no converter", zap.String("file", path))
			return nil
		}

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		enc, err := sniffSource(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}

		count++

		if err := convertFile(ctx, path, src, enc, dst, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", src, err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if count == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	if errs != nil {
		return fmt.Errorf("unable to process directory: %w", errs)
	}
	return nil
}

func convertFile(ctx context.Context, path, src string, enc srcEncoding, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := env.Rpt.StoreCopy("sources/"+filepath.ToSlash(src), path); err != nil {
		log.Warn("Unable to store source in report", zap.String("file", path), zap.Error(err))
	}

	out, err := convertStylesheet(ctx, file, enc, src, log)
	if err != nil {
		return err
	}
	return writeResult(buildOutputPath(src, dst, env), out, env, log)
}

// processArchive converts stylesheets inside zip archive found under
// "pathIn".
func processArchive(ctx context.Context, path, pathIn, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	var (
		count int
		errs  error
	)
	err := archive.Walk(ctx, path, pathIn, isConvertible, func(archive string, f *zip.File) error {
		data, err := readArchived(f)
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", archive), zap.String("file", f.Name), zap.Error(err))
			return nil
		}
		enc, err := sniff(data)
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", archive), zap.String("file", f.Name), zap.Error(err))
			return nil
		}

		count++

		env.Rpt.StoreData("sources/"+f.Name, data)

		out, err := convertStylesheet(ctx, bytes.NewReader(data), enc, filepath.FromSlash(f.Name), log)
		if err == nil {
			err = writeResult(buildOutputPath(filepath.FromSlash(f.Name), dst, env), out, env, log)
		}
		if err != nil {
			log.Error("Unable to process file in archive", zap.String("archive", archive), zap.String("file", f.Name), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", f.Name, err))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to process archive: %w", err)
	}
	if count == 0 {
		if len(pathIn) != 0 {
			return fmt.Errorf("input source was not found in archive (%s) => (%s)", path, pathIn)
		}
		log.Debug("Nothing to process", zap.String("archive", path))
	}
	if errs != nil {
		return fmt.Errorf("unable to process archive: %w", errs)
	}
	return nil
}

func readArchived(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// convertStylesheet converts single source. "src" is part of the source path
// (always including file name) relative to the original path. When actual
// file was specified it will be just base file name without a path.
func convertStylesheet(ctx context.Context, r io.Reader, enc srcEncoding, src string, log *zap.Logger) (out []byte, rerr error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env := state.EnvFromContext(ctx)

	log.Info("Conversion starting", zap.String("from", src), zap.Stringer("encoding", enc))
	defer func(start time.Time) {
		// single broken stylesheet should not stop directory processing
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			out, rerr = nil, fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.Int("bytes", len(out)))
		}
	}(time.Now())

	conv, err := converterFor(src)
	if err != nil {
		return nil, err
	}
	data, err := decodeSource(r, enc, env.CodePage, log)
	if err != nil {
		return nil, err
	}
	tree, err := conv(data, src, &env.Cfg.Conversion, log)
	if err != nil {
		return nil, fmt.Errorf("unable to convert (%s): %w", src, err)
	}

	env.Rpt.StoreData("trees/"+filepath.ToSlash(src)+".txt", []byte(tree.String()))

	return Format(tree, &env.Cfg.Output)
}

// writeResult stores converted text refusing to replace existing file unless
// asked to.
func writeResult(name string, data []byte, env *state.LocalEnv, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(name, data, 0644); err != nil {
		return fmt.Errorf("unable to write result: %w", err)
	}
	log.Debug("Result written", zap.String("file", name))
	return nil
}
