package extract

import "fmt"

func pdfNotice(fileName string) string {
	label := "Your PDF file"
	if fileName != "" {
		label = fmt.Sprintf("Your PDF file %q", fileName)
	}
	return "PDF Processing Note:\n\n" + label + ` was uploaded successfully, but automatic text extraction encountered an issue.

For best results, please:
1. Copy and paste your resume text directly into the text area
2. Ensure the PDF contains selectable text (not just images)
3. Try saving your resume as a Word document instead`
}

const docxNotice = `DOCX Processing Note:

Your Word document was uploaded successfully, but automatic text extraction encountered an issue.

For best results, please:
1. Copy and paste your resume text directly into the text area
2. Ensure the document is in proper DOCX format
3. Check that the document isn't password protected`
