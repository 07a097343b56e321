// Package importer turns improvement-task workbooks into item candidates.
//
// A workbook sheet lists one task per column. Columns before
// Layout.StartColumn hold row labels; each later column is read at the row
// offsets named by Layout.Fields.
package importer

// Field keys recognized by the parser.
const (
	KeyDepartment         = "department"
	KeyManagerName        = "managerName"
	KeyManagerEmail       = "managerEmail"
	KeyTaskName           = "taskName"
	KeyTaskDescription    = "taskDescription"
	KeyTaskType           = "taskType"
	KeyFrequency          = "frequency"
	KeyCurrentMethod      = "currentMethod"
	KeyDuration           = "duration"
	KeyParticipants       = "participants"
	KeyProblem            = "problem"
	KeyReason             = "reason"
	KeyPurpose            = "purpose"
	KeyEffectQuantitative = "effectQuantitative"
	KeyEffectQualitative  = "effectQualitative"
	KeyAutomation         = "automation"
	KeyInputData          = "inputData"
	KeyOutputData         = "outputData"
)

// Field binds a key to a 0-based row offset and the label used when the
// value is written into a description.
type Field struct {
	Key   string
	Label string
	Row   int
}

// Layout describes where task data lives in a sheet.
type Layout struct {
	// StartColumn is the 0-based index of the first task column.
	StartColumn int
	// MinRows is the fewest rows a sheet needs to be considered at all.
	MinRows int
	// Fields maps keys to rows.
	Fields []Field
	// Description lists the keys concatenated into the item description, in order.
	Description []string
	// ExcludedSheetMarkers skip sheets whose name contains any marker when the
	// caller does not pick sheets explicitly.
	ExcludedSheetMarkers []string
}

// DefaultLayout is the task survey template used across departments.
var DefaultLayout = Layout{
	StartColumn: 3,
	MinRows:     10,
	Fields: []Field{
		{Key: KeyDepartment, Label: "부서명", Row: 2},
		{Key: KeyManagerName, Label: "담당자명", Row: 3},
		{Key: KeyManagerEmail, Label: "담당자 이메일", Row: 4},
		{Key: KeyTaskName, Label: "업무명", Row: 5},
		{Key: KeyTaskDescription, Label: "업무내용", Row: 6},
		{Key: KeyTaskType, Label: "업무분류", Row: 7},
		{Key: KeyFrequency, Label: "업무빈도", Row: 8},
		{Key: KeyCurrentMethod, Label: "현재방식", Row: 9},
		{Key: KeyDuration, Label: "소요시간", Row: 10},
		{Key: KeyParticipants, Label: "참여인원", Row: 11},
		{Key: KeyProblem, Label: "문제점", Row: 12},
		{Key: KeyReason, Label: "개선사유", Row: 13},
		{Key: KeyPurpose, Label: "개발목적", Row: 14},
		{Key: KeyEffectQuantitative, Label: "기대효과(정량)", Row: 15},
		{Key: KeyEffectQualitative, Label: "기대효과(정성)", Row: 16},
		{Key: KeyAutomation, Label: "자동화수준", Row: 17},
		{Key: KeyInputData, Label: "입력데이터", Row: 18},
		{Key: KeyOutputData, Label: "출력데이터", Row: 19},
	},
	Description: []string{
		KeyTaskDescription,
		KeyCurrentMethod,
		KeyDuration,
		KeyParticipants,
		KeyProblem,
		KeyReason,
		KeyPurpose,
		KeyEffectQuantitative,
		KeyEffectQualitative,
		KeyAutomation,
		KeyInputData,
		KeyOutputData,
		KeyTaskType,
		KeyFrequency,
	},
	ExcludedSheetMarkers: []string{"요약", "취합", "기타"},
}

// field returns the field bound to key.
func (l Layout) field(key string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}
