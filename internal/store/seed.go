package store

import "github.com/idilsaglam/oadesk/internal/model"

// SeedTodos returns the initial to-do table.
func SeedTodos() []model.TodoItem {
	return []model.TodoItem{
		{ID: 1, Text: "完成项目报告", Completed: false},
		{ID: 2, Text: "准备周会PPT", Completed: true},
		{ID: 3, Text: "回复客户邮件", Completed: false},
	}
}

// SeedAnnouncements returns the initial announcement feed.
func SeedAnnouncements() []model.Announcement {
	return []model.Announcement{
		{
			ID:      1,
			Title:   "关于2024年国庆节放假安排的通知",
			Content: "根据国家法定节假日规定，结合公司实际情况，现将2024年国庆节放假安排通知如下：10月1日至7日放假调休，共7天。请各部门提前安排好工作，确保节后工作顺利进行。",
			Date:    "2024-09-15",
			Author:  "行政部",
		},
		{
			ID:      2,
			Title:   "第三季度优秀员工评选结果公示",
			Content: "经过各部门推荐及公司评审委员会的综合评定，第三季度优秀员工已经评选产生。获奖名单已在公司内部公告栏公示，请大家前往查看并向他们表示祝贺。",
			Date:    "2024-09-12",
			Author:  "人力资源部",
		},
	}
}
