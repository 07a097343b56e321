package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/improvement-board/internal/auth"
	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/events"
	"github.com/spec-kit/improvement-board/internal/importer"
	"github.com/spec-kit/improvement-board/internal/observability"
	"github.com/spec-kit/improvement-board/internal/repository"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

// ImportNote is attached to the initial history entry of imported items.
const ImportNote = "엑셀 업로드로 자동 등록"

// DepartmentAliases maps sheet-level department names to canonical names.
var DepartmentAliases = map[string]string{
	"관리총괄":     "관리본부",
	"생산기술본부":   "생산기술본부",
	"생산본부":     "생산본부",
	"연구본부":     "연구본부",
	"영업본부":     "영업본부",
	"전자부품사업본부": "전자부품사업본부",
	"품질본부":     "품질본부",
	"구매본부":     "구매본부",
}

// ImportService previews and commits spreadsheet imports.
type ImportService struct {
	parser      *importer.Parser
	items       repository.ItemRepository
	departments repository.DepartmentRepository
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	strict      bool
	aliases     map[string]string
	now         func() time.Time
}

// ImportDependencies wires ImportService.
type ImportDependencies struct {
	Items       repository.ItemRepository
	Departments repository.DepartmentRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	// StrictDepartments reports unmatched departments instead of filing the
	// item under the first department.
	StrictDepartments bool
}

// NewImportService constructs the service with the default survey layout.
func NewImportService(deps ImportDependencies) *ImportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		parser:      importer.NewParser(importer.DefaultLayout),
		items:       deps.Items,
		departments: deps.Departments,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		strict:      deps.StrictDepartments,
		aliases:     DepartmentAliases,
		now:         time.Now,
	}
}

// ImportPreview is the parse-only result.
type ImportPreview struct {
	Sheets     []string
	Candidates []importer.Candidate
	Errors     []string
}

// ImportReport is the commit result.
type ImportReport struct {
	Created int
	Skipped int
	Errors  []string
}

// Preview parses the workbook without writing anything.
func (s *ImportService) Preview(ctx context.Context, data []byte, fileName string, sheets []string) (*ImportPreview, error) {
	result, err := s.parse(data, fileName, sheets)
	if err != nil {
		return nil, err
	}
	return &ImportPreview{
		Sheets:     result.Sheets,
		Candidates: result.Candidates,
		Errors:     result.Errors,
	}, nil
}

// Commit parses the workbook and creates an item for every candidate that is
// not already present in its department. A failing row is reported and
// skipped; the rest of the batch continues.
func (s *ImportService) Commit(ctx context.Context, data []byte, fileName string, sheets []string, actor domain.Actor) (*ImportReport, error) {
	if err := auth.EnsureCanCreate(actor); err != nil {
		return nil, err
	}
	result, err := s.parse(data, fileName, sheets)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Errors: append([]string{}, result.Errors...)}
	resolved := make(map[string]*domain.Department)
	failed := 0

	for _, c := range result.Candidates {
		dept, ok := resolved[c.DepartmentName]
		if !ok {
			dept, err = s.resolveDepartment(ctx, c.DepartmentName)
			if err != nil {
				report.Errors = append(report.Errors, err.Error())
				report.Skipped++
				failed++
				continue
			}
			resolved[c.DepartmentName] = dept
		}

		if utf8.RuneCountInString(c.Title) > MaxTitleLength {
			report.Errors = append(report.Errors, fmt.Sprintf("%q: title longer than %d characters", c.Title, MaxTitleLength))
			report.Skipped++
			failed++
			continue
		}

		exists, err := s.items.ExistsByTitle(ctx, dept.ID, c.Title)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%q: %v", c.Title, err))
			report.Skipped++
			failed++
			continue
		}
		if exists {
			report.Skipped++
			continue
		}

		description := c.Description
		note := ImportNote
		item := &domain.Item{
			Title:        c.Title,
			Description:  nonEmpty(&description),
			DepartmentID: dept.ID,
			CreatedBy:    actor.ID,
			Status:       domain.StatusIdea,
		}
		initial := &domain.StatusHistory{ToStatus: domain.StatusIdea, ChangedBy: actor.ID, Note: &note}
		if err := s.items.Create(ctx, item, nil, initial); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%q: %v", c.Title, err))
			report.Skipped++
			failed++
			continue
		}
		report.Created++
		s.metrics.ItemCreated()
	}

	s.metrics.ImportRows("created", report.Created)
	s.metrics.ImportRows("skipped", report.Skipped-failed)
	s.metrics.ImportRows("failed", failed)
	s.logger.Info("spreadsheet import committed",
		zap.String("file", fileName),
		zap.String("actor", actor.ID),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)),
	)
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventItemsImported, "", actor, s.now(), events.ItemsImportedPayload{
		Created: report.Created,
		Skipped: report.Skipped,
		Errors:  len(report.Errors),
	}))
	return report, nil
}

func (s *ImportService) parse(data []byte, fileName string, sheets []string) (*importer.Result, error) {
	result, err := s.parser.Parse(data, fileName, sheets)
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, importer.ErrEncrypted):
		return nil, apperrors.NewEncryptedFile()
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return nil, apperrors.NewUnsupportedFileType(err.Error())
	}
	return nil, apperrors.NewInternalError(err)
}

// resolveDepartment maps a sheet department name to a stored department:
// alias, then exact name, then a department containing the first word. When
// nothing matches the first department by code is used unless strict.
func (s *ImportService) resolveDepartment(ctx context.Context, name string) (*domain.Department, error) {
	mapped := name
	if alias, ok := s.aliases[name]; ok {
		mapped = alias
	}
	fragment := ""
	if fields := strings.Fields(mapped); len(fields) > 0 {
		fragment = fields[0]
	}

	dept, err := s.departments.FindByNameOrFragment(ctx, mapped, fragment)
	if err == nil {
		return dept, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("department %q: %v", name, err)
	}
	if s.strict {
		return nil, fmt.Errorf("department not found: %s", name)
	}

	dept, err = s.departments.First(ctx)
	if err != nil {
		return nil, fmt.Errorf("department not found: %s", name)
	}
	s.logger.Warn("import department not matched; using fallback",
		zap.String("department", name),
		zap.String("fallback", dept.Code),
	)
	return dept, nil
}
