package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/improvement-board/internal/events"
	"github.com/spec-kit/improvement-board/internal/importer"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

type surveyTask struct {
	department string
	title      string
	detail     string
}

func surveyWorkbook(t *testing.T, sheet string, tasks []surveyTask) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))

	set := func(col, row int, val any) {
		ref, err := excelize.CoordinatesToCellName(col+1, row+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, ref, val))
	}
	for _, field := range importer.DefaultLayout.Fields {
		set(1, field.Row, field.Label)
	}
	for i, task := range tasks {
		col := importer.DefaultLayout.StartColumn + i
		set(col, 2, task.department)
		set(col, 5, task.title)
		if task.detail != "" {
			set(col, 6, task.detail)
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportCommitIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.actor("admin@company.com")
	data := surveyWorkbook(t, "생산본부", []surveyTask{
		{department: "생산본부", title: "자재 입고 자동화", detail: "바코드 스캔"},
		{department: "관리총괄", title: "결재 양식 통합"},
	})

	preview, err := env.imports.Preview(ctx, data, "survey.xlsx", nil)
	require.NoError(t, err)
	require.Len(t, preview.Candidates, 2)
	count, err := env.store.Items().CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count, "preview writes nothing")

	report, err := env.imports.Commit(ctx, data, "survey.xlsx", nil, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Skipped)

	again, err := env.imports.Commit(ctx, data, "survey.xlsx", nil, admin)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 2, again.Skipped)

	mgmt := env.dept("MGMT").ID
	page, err := env.items.List(ctx, ListItemsParams{DepartmentID: &mgmt, Limit: 100})
	require.NoError(t, err)
	var imported *string
	for _, l := range page.Items {
		if l.Title == "결재 양식 통합" {
			id := l.ID
			imported = &id
		}
	}
	require.NotNil(t, imported, "alias resolves to the canonical department")

	detail, err := env.items.Get(ctx, *imported)
	require.NoError(t, err)
	require.Len(t, detail.History, 1)
	require.NotNil(t, detail.History[0].Note)
	assert.Equal(t, ImportNote, *detail.History[0].Note)
	assert.Equal(t, admin.ID, detail.Item.CreatedBy)
}

func TestImportSkipsTitlesOfDeletedItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.create(t, "hong@company.com", "삭제된 과제")
	require.NoError(t, env.items.Delete(ctx, item.ID, env.actor("hong@company.com")))

	data := surveyWorkbook(t, "생산", []surveyTask{{department: "생산본부", title: "삭제된 과제"}})
	report, err := env.imports.Commit(ctx, data, "survey.xlsx", nil, env.actor("admin@company.com"))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Skipped)
}

func TestImportUnknownDepartment(t *testing.T) {
	data := surveyWorkbook(t, "기획", []surveyTask{{department: "미래전략실", title: "신규 과제"}})

	t.Run("falls back to first department", func(t *testing.T) {
		env := newTestEnv(t)
		report, err := env.imports.Commit(context.Background(), data, "survey.xlsx", nil, env.actor("admin@company.com"))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Created)
		exists, err := env.store.Items().ExistsByTitle(context.Background(), env.dept("ELEC").ID, "신규 과제")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("strict mode reports the row", func(t *testing.T) {
		env := newTestEnv(t)
		strict := NewImportService(ImportDependencies{
			Items:             env.store.Items(),
			Departments:       env.store.Departments(),
			Logger:            zaptest.NewLogger(t),
			StrictDepartments: true,
		})
		report, err := strict.Commit(context.Background(), data, "survey.xlsx", nil, env.actor("admin@company.com"))
		require.NoError(t, err)
		assert.Equal(t, 0, report.Created)
		assert.Equal(t, 1, report.Skipped)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "미래전략실")
	})
}

func TestImportRejectsLongTitlesPerRow(t *testing.T) {
	env := newTestEnv(t)
	data := surveyWorkbook(t, "생산", []surveyTask{
		{department: "생산본부", title: strings.Repeat("가", MaxTitleLength+1)},
		{department: "생산본부", title: "정상 과제"},
	})
	report, err := env.imports.Commit(context.Background(), data, "survey.xlsx", nil, env.actor("admin@company.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Skipped)
	assert.Len(t, report.Errors, 1)
}

func TestImportFileErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.actor("admin@company.com")

	cfb := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 512)...)
	_, err := env.imports.Commit(ctx, cfb, "locked.xlsx", nil, admin)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeEncryptedFile))

	_, err = env.imports.Preview(ctx, cfb, "corrupt.xls", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnsupportedFileType))

	_, err = env.imports.Preview(ctx, []byte("name,title\n"), "data.xlsx", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnsupportedFileType))

	_, err = env.imports.Commit(ctx, surveyWorkbook(t, "x", nil), "survey.xlsx", nil, env.actor("exec@company.com"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	count, err := env.store.Items().CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestImportCommitsLegacyXLS(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	data, err := os.ReadFile(filepath.Join("..", "importer", "testdata", "survey.xls"))
	require.NoError(t, err)

	preview, err := env.imports.Preview(ctx, data, "survey.xls", nil)
	require.NoError(t, err)
	require.Len(t, preview.Candidates, 2)

	report, err := env.imports.Commit(ctx, data, "survey.xls", nil, env.actor("admin@company.com"))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)

	exists, err := env.store.Items().ExistsByTitle(ctx, env.dept("PROD").ID, "포장 자동화")
	require.NoError(t, err)
	assert.True(t, exists)
}

type failingDispatcher struct{}

func (failingDispatcher) Publish(context.Context, events.Event) error {
	return errors.New("dispatcher closed")
}

func (failingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func TestImportLogsPublishFailure(t *testing.T) {
	env := newTestEnv(t)
	core, logs := observer.New(zap.WarnLevel)
	svc := NewImportService(ImportDependencies{
		Items:       env.store.Items(),
		Departments: env.store.Departments(),
		Dispatcher:  failingDispatcher{},
		Logger:      zap.New(core),
	})

	data := surveyWorkbook(t, "생산본부", []surveyTask{{department: "생산본부", title: "라벨 출력 개선"}})
	report, err := svc.Commit(context.Background(), data, "survey.xlsx", nil, env.actor("admin@company.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	entries := logs.FilterMessage("publish event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, string(events.EventItemsImported), entries[0].ContextMap()["type"])
}
