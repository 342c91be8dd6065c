package bridge

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/qtbridge/bridgegen/internal/constructor"
	"github.com/qtbridge/bridgegen/internal/diagnostic"
	"github.com/qtbridge/bridgegen/internal/logging"
	"github.com/qtbridge/bridgegen/internal/parser"
)

// Scanner extracts bridge modules from source files.
type Scanner struct {
	markers Markers
	workers int
	logger  *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for per-file progress.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkers limits how many files ScanFiles reads and parses at once.
// Zero or less uses one worker per CPU.
func WithWorkers(n int) Option {
	return func(s *Scanner) { s.workers = n }
}

// NewScanner creates a scanner recognizing the given markers.
func NewScanner(markers Markers, opts ...Option) *Scanner {
	s := &Scanner{markers: markers, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers <= 0 {
		s.workers = runtime.NumCPU()
	}
	return s
}

// Scan parses src and collects its bridge modules. Syntax errors are
// reported as diagnostics and whatever parsed is still scanned.
func (s *Scanner) Scan(filename, src string) *Result {
	file, errs := parser.ParseFile(filename, src)

	res := &Result{Filename: filename, Source: src}
	res.Diagnostics = append(res.Diagnostics, errs...)

	parser.Inspect(file.Items, func(item parser.Item) bool {
		mod, ok := item.(*parser.ItemMod)
		if !ok || parser.FindAttribute(mod.Attrs, s.markers.Bridge...) == nil {
			return true
		}
		res.Modules = append(res.Modules, s.scanModule(mod, res))
		return false
	})

	logging.FileProcessed(s.logger, filename, len(res.Constructors()), len(res.Diagnostics))

	return res
}

func (s *Scanner) scanModule(mod *parser.ItemMod, res *Result) *Module {
	m := &Module{Name: mod.Name.Value, Span: mod.Span}

	var impls []*parser.ItemImpl
	parser.Inspect(mod.Items, func(item parser.Item) bool {
		switch it := item.(type) {
		case *parser.ItemMod:
			// Nested modules are not part of the bridge.
			return false

		case *parser.ItemStruct:
			if attr := parser.FindAttribute(it.Attrs, s.markers.QObject...); attr != nil {
				m.Objects = append(m.Objects, newObject(it.Name.Value, it.Name.Value, attr, it))
			}

		case *parser.ItemType:
			// #[qobject] type MyObject = super::MyObjectRust;
			if attr := parser.FindAttribute(it.Attrs, s.markers.QObject...); attr != nil {
				storage := it.Name.Value
				if it.Value != nil {
					storage = it.Value.String()
				}
				m.Objects = append(m.Objects, newObject(it.Name.Value, storage, attr, it))
			}

		case *parser.ItemImpl:
			if it.Trait != nil && s.isConstructor(it.Trait) {
				impls = append(impls, it)
			}
		}
		return true
	})

	// Objects are known before any impl is matched, so declaration order
	// within the module does not matter.
	shapes := make(map[*Object]map[string]*constructor.Constructor)
	for _, impl := range impls {
		c, err := constructor.Parse(impl)
		if err != nil {
			res.addError(err)
			continue
		}

		obj := m.Object(targetName(impl.SelfType))
		if obj == nil {
			res.Diagnostics = append(res.Diagnostics,
				diagnostic.Common.UnknownConstructorTarget(impl.SelfType.GetSpan(), impl.SelfType.String()))
			continue
		}

		seen, ok := shapes[obj]
		if !ok {
			seen = make(map[string]*constructor.Constructor)
			shapes[obj] = seen
		}
		shape := c.Shape()
		if first, dup := seen[shape]; dup {
			res.Diagnostics = append(res.Diagnostics,
				diagnostic.Common.DuplicateConstructorShape(c.Span, first.Span, obj.Name, shape))
			continue
		}
		seen[shape] = c

		obj.Constructors = append(obj.Constructors, c)
	}

	return m
}

// isConstructor matches the trait against the constructor markers.
// ::cxx_qt::Constructor and cxx_qt::Constructor name the same trait.
func (s *Scanner) isConstructor(trait *parser.Path) bool {
	name := strings.Join(trait.Idents(), "::")
	for _, marker := range s.markers.Constructor {
		if name == strings.TrimPrefix(marker, "::") {
			return true
		}
	}
	return false
}

func newObject(name, storage string, attr *parser.Attribute, item parser.Item) *Object {
	obj := &Object{
		Name:       name,
		Storage:    storage,
		Base:       DefaultBase,
		QMLElement: attr.HasFlag("qml_element"),
		Span:       item.GetSpan(),
	}
	if base, ok := attr.Arg("base"); ok && base != "" {
		obj.Base = base
	} else if sep := parser.FindAttribute(item.Attributes(), "base"); sep != nil && sep.HasValue && sep.Value != "" {
		// #[base = "QAbstractListModel"] next to #[qobject]
		obj.Base = sep.Value
	}
	if _, ok := attr.Arg("qml_uri"); ok {
		obj.QMLElement = true
	}
	return obj
}

// targetName returns the object a constructor impl is for. Both
// qobject::MyObject and MyObject name MyObject.
func targetName(t parser.Type) string {
	pt, ok := t.(*parser.PathType)
	if !ok || pt.QSelf != nil {
		return ""
	}
	last := pt.Path.Last()
	if last == nil || last.Ident == nil || last.Args != nil {
		return ""
	}
	return last.Ident.Value
}

func (r *Result) addError(err error) {
	if d, ok := diagnostic.As(err); ok {
		r.Diagnostics = append(r.Diagnostics, d)
		return
	}
	r.Diagnostics = append(r.Diagnostics, diagnostic.NewDiagnostic().Error().Title("error").Message(err.Error()).Build())
}

// ScanFile reads and scans a single file.
func (s *Scanner) ScanFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.Scan(path, string(data)), nil
}

// ScanFiles scans paths in parallel. Results are sorted by file name. A
// read failure or cancellation stops the whole scan; diagnostics never do.
func (s *Scanner) ScanFiles(ctx context.Context, paths []string) ([]*Result, error) {
	results := make([]*Result, len(paths))

	sem := make(chan struct{}, s.workers)
	g, gctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		i, path := i, path

		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}

			defer func() { <-sem }()

			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := s.ScanFile(path)
			if err != nil {
				return err
			}
			results[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Filename < results[j].Filename
	})

	return results, nil
}
