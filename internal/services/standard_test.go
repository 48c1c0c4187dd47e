package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
)

const standardsYAML = `
- standardID: GB/T 1.1-2020
  documentName: 标准化工作导则
  documentNameEnglish: Directives for standardization
  scope: structure and drafting rules
  terms:
    - termID: 1
      term: 标准
      termEnglish: standard
      definition: a document established by consensus
      notes:
        - ID: 1
          content: standards are based on science and experience
    - termID: 2
      term: 文件
      termEnglish: document
      definition: information and its medium
- standardID: ISO 9000
  documentName: 质量管理体系
  documentNameEnglish: Quality management systems
  scope: fundamentals and vocabulary
`

func TestDecodeStandardsAcceptsListOrSingleDocument(t *testing.T) {
	list, err := DecodeStandards([]byte(standardsYAML))
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Len(t, list[0].Terms, 2)
	require.Equal(t, "standards are based on science and experience", list[0].Terms[0].Notes[0].Content)

	one, err := DecodeStandards([]byte(`{"standardID": "ISO 9001", "documentName": "QMS", "terms": []}`))
	require.NoError(t, err)
	require.Len(t, one, 1)
	require.Equal(t, "ISO 9001", one[0].StandardID)

	_, err = DecodeStandards([]byte(`"just a string"`))
	require.Error(t, err)
	_, err = DecodeStandards([]byte(""))
	require.Error(t, err)
}

func TestImportAndListStandards(t *testing.T) {
	e := newTestEnv(t, false)
	ctx := context.Background()

	n, err := e.standards.ImportDocument(ctx, strings.NewReader(standardsYAML))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	all, err := e.standards.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	byID := map[string]int{}
	for _, s := range all {
		byID[s.StandardID] = len(s.Terms)
		require.NotNil(t, s.Terms)
	}
	require.Equal(t, map[string]int{"GB/T 1.1-2020": 2, "ISO 9000": 0}, byID)

	// Ids match with spaces removed, so this is the same standard.
	_, err = e.standards.Import(ctx, []StandardInput{{StandardID: "ISO9000"}})
	require.Equal(t, domainagg.CodeConflict, domainagg.CodeOf(err))
}

func TestImportIsAllOrNothing(t *testing.T) {
	e := newTestEnv(t, false)
	ctx := context.Background()
	_, err := e.standards.Import(ctx, []StandardInput{{StandardID: "ISO 14001"}})
	require.NoError(t, err)

	_, err = e.standards.Import(ctx, []StandardInput{{StandardID: "ISO 27001"}, {StandardID: "ISO 14001"}})
	require.Equal(t, domainagg.CodeConflict, domainagg.CodeOf(err))

	_, err = e.standards.Import(ctx, []StandardInput{{StandardID: "ISO 45001"}, {StandardID: "ISO45001"}})
	require.Equal(t, domainagg.CodeConflict, domainagg.CodeOf(err))

	_, err = e.standards.Import(ctx, []StandardInput{{StandardID: " "}})
	require.Equal(t, domainagg.CodeValidation, domainagg.CodeOf(err))

	all, err := e.standards.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "ISO 14001", all[0].StandardID)
}
