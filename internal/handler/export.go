package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/md-faizanahmad/quick-tracker/internal/store"
	"github.com/md-faizanahmad/quick-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler writes the full local snapshot as CSV or XLSX.
type ExportHandler struct {
	Store *store.Store
}

func NewExportHandler(st *store.Store) *ExportHandler {
	return &ExportHandler{Store: st}
}

var exportHeaders = []string{"Date", "Category", "Amount", "Currency", "Note", "Synced"}

// ExportCSV streams all records as CSV, newest first.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	recs, err := h.Store.GetAll()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load expenses")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM so spreadsheet apps pick up currency symbols
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(exportHeaders)
	for i := range recs {
		e := &recs[i]
		writer.Write([]string{
			e.Date.Format("2006-01-02"),
			e.Category,
			e.Amount.String(),
			e.Currency,
			e.Note,
			strconv.FormatBool(e.Synced),
		})
	}
}

// ExportXLSX writes all records as a spreadsheet, newest first.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	recs, err := h.Store.GetAll()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load expenses")
		return
	}

	f := excelize.NewFile()
	sheetName := "Expenses"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)

	for i, head := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, head)
	}

	for idx := range recs {
		e := &recs[idx]
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.Date.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), e.Amount.String())
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), e.Currency)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), e.Note)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), e.Synced)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 15)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 10)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
