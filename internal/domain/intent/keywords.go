package intent

import "github.com/0xcro3dile/boardchat/internal/domain/entities"

// DateRule maps a phrase to a date range. Rules are scanned in slice order.
type DateRule struct {
	Pattern string
	Range   entities.DateRange
}

// DateRules is the default date-phrase table. Order matters: the first phrase found wins,
// so "최근" shadows the longer "최근 일주일" and "최근 7일", which map to the same range anyway.
var DateRules = []DateRule{
	{"오늘", entities.DateToday},
	{"어제", entities.DateYesterday},
	{"이번 주", entities.DateThisWeek},
	{"이번주", entities.DateThisWeek},
	{"지난 주", entities.DateLastWeek},
	{"지난주", entities.DateLastWeek},
	{"이번 달", entities.DateThisMonth},
	{"이번달", entities.DateThisMonth},
	{"지난 달", entities.DateLastMonth},
	{"지난달", entities.DateLastMonth},
	{"최근", entities.DateRecent},
	{"최근 일주일", entities.DateRecent},
	{"최근 7일", entities.DateRecent},
}

// ProblemKeywords mark a question about problems or difficult cases.
var ProblemKeywords = []string{"문제", "어려움", "이슈", "오류", "장애"}

// ResponsibleKeywords mark a question about who handles a client.
var ResponsibleKeywords = []string{"담당자", "문의", "누구"}
