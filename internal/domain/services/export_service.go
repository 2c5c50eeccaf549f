package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"vdp-support-service/internal/domain/models"
)

// 导出文件的表头，顺序固定
var exportHeaders = []string{
	"ID",
	"Full Name",
	"Unit Number",
	"Tower/Block",
	"Contact Number",
	"Email",
	"Issue Type",
	"Urgency",
	"Description",
	"Submitted At",
}

const exportSheetName = "Tickets"

var descriptionFlattener = strings.NewReplacer(`"`, `""`, "\r", " ", "\n", " ")

// GenerateCSV 生成工单 CSV。
// ID 与提交时间不加引号；只有姓名和描述会转义双引号，描述中的换行替换为空格。
// 空列表返回空字符串。
func GenerateCSV(tickets []models.SupportTicket) string {
	if len(tickets) == 0 {
		return ""
	}
	lines := make([]string, 0, len(tickets)+1)
	lines = append(lines, strings.Join(exportHeaders, ","))
	for _, t := range tickets {
		row := []string{
			t.ID,
			quote(strings.ReplaceAll(t.FullName, `"`, `""`)),
			quote(t.UnitNumber),
			quote(t.TowerBlock),
			quote(t.ContactNumber),
			quote(t.Email),
			quote(string(t.IssueType)),
			quote(string(t.Urgency)),
			quote(descriptionFlattener.Replace(t.Description)),
			t.SubmittedAt,
		}
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n")
}

func quote(s string) string {
	return `"` + s + `"`
}

// GenerateXLSX 生成与 CSV 同列的 Excel 工作簿
func GenerateXLSX(tickets []models.SupportTicket) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheetName); err != nil {
		return nil, fmt.Errorf("重命名工作表失败: %w", err)
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("写入表头失败: %w", err)
	}

	for i, t := range tickets {
		row := []interface{}{
			t.ID,
			t.FullName,
			t.UnitNumber,
			t.TowerBlock,
			t.ContactNumber,
			t.Email,
			string(t.IssueType),
			string(t.Urgency),
			t.Description,
			t.SubmittedAt,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("写入第 %d 行失败: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("冻结表头失败: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("生成 Excel 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFilename 返回导出文件名，例如 support_tickets_2026-10-16.csv
func ExportFilename(now time.Time, ext string) string {
	return fmt.Sprintf("support_tickets_%s.%s", now.Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}
