package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

func TestExtract_ScenarioNoClientToday(t *testing.T) {
	q := New().Extract("오늘 박선미과장님 관련 이슈 있었나요?", []string{"한빛상사", "대한물산"})

	assert.Equal(t, "", q.ClientName)
	assert.False(t, q.HasClient())
	assert.Equal(t, entities.DateToday, q.DateRange)
	assert.True(t, q.IsProblemQuery)
	assert.False(t, q.WantsResponsiblePerson)
}

func TestMatchClient(t *testing.T) {
	names := []string{"한빛상사", "대한물산", "대한물산 부산지점"}

	cases := []struct {
		msg  string
		want string
	}{
		{"한빛상사 담당자가 누구죠?", "한빛상사"},
		{"지난주 대한물산 문의 내용", "대한물산"},
		{"대한 관련 글 보여줘", "대한물산"},     // first token contained in a name
		{"대한물산 부산지점 이슈", "대한물산"},     // first match wins, not the longest
		{"상사 관련 글", "한빛상사"},           // permissive: token inside the name
		{"최근 문의 알려줘", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, MatchClient(c.msg, names), "message %q", c.msg)
	}
}

func TestMatchClient_SkipsEmptyNames(t *testing.T) {
	assert.Equal(t, "", MatchClient("아무 질문", []string{"", ""}))
	assert.Equal(t, "한빛상사", MatchClient("한빛상사 이슈", []string{"", "한빛상사"}))
}

func TestMatchClient_NormalisesUnicode(t *testing.T) {
	decomposed := norm.NFD.String("한빛상사")
	assert.NotEqual(t, "한빛상사", decomposed)

	assert.Equal(t, "한빛상사", MatchClient(decomposed+" 문의", []string{"한빛상사"}))
	assert.Equal(t, decomposed, MatchClient("한빛상사 문의", []string{decomposed}), "the original name is returned")
}

func TestDateRange(t *testing.T) {
	e := New()
	cases := []struct {
		msg  string
		want entities.DateRange
	}{
		{"오늘 들어온 문의", entities.DateToday},
		{"어제 이슈", entities.DateYesterday},
		{"이번 주 글", entities.DateThisWeek},
		{"이번주 글", entities.DateThisWeek},
		{"지난 주 글", entities.DateLastWeek},
		{"지난주 글", entities.DateLastWeek},
		{"이번 달 글", entities.DateThisMonth},
		{"이번달 글", entities.DateThisMonth},
		{"지난 달 글", entities.DateLastMonth},
		{"지난달 글", entities.DateLastMonth},
		{"최근 일주일 문의", entities.DateRecent},
		{"최근 7일 문의", entities.DateRecent},
		{"어제와 오늘 글", entities.DateToday}, // table order, not message order
		{"한빛상사 담당자", entities.DateNone},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, e.DateRange(c.msg), "message %q", c.msg)
	}
}

func TestDateKeyword(t *testing.T) {
	e := New()
	assert.Equal(t, "최근", e.DateKeyword("최근 7일 문의"))
	assert.Equal(t, "지난주", e.DateKeyword("지난주 글"))
	assert.Equal(t, "", e.DateKeyword("아무 말"))
}

func TestTopicFlags(t *testing.T) {
	e := New()

	for _, kw := range ProblemKeywords {
		q := e.Extract("요즘 "+kw+" 있나요", nil)
		assert.True(t, q.IsProblemQuery, kw)
	}
	for _, kw := range ResponsibleKeywords {
		q := e.Extract("한빛상사 "+kw, nil)
		assert.True(t, q.WantsResponsiblePerson, kw)
	}

	q := e.Extract("한빛상사 장애 담당자 누구야", nil)
	assert.True(t, q.IsProblemQuery)
	assert.True(t, q.WantsResponsiblePerson, "flags are independent")

	q = e.Extract("안녕하세요", nil)
	assert.False(t, q.IsProblemQuery)
	assert.False(t, q.WantsResponsiblePerson)
}

func TestNewWithTables(t *testing.T) {
	e := NewWithTables(
		[]DateRule{{Pattern: "today", Range: entities.DateToday}},
		[]string{"bug"},
		[]string{"owner"},
	)
	q := e.Extract("who is the owner of today's bug", nil)

	assert.Equal(t, entities.DateToday, q.DateRange)
	assert.True(t, q.IsProblemQuery)
	assert.True(t, q.WantsResponsiblePerson)
	assert.Equal(t, entities.DateNone, e.DateRange("오늘"))
}
