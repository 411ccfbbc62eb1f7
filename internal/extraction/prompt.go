package extraction

// invoicePrompt is the shared instruction template sent to every model
// provider. The extracted document text is appended below it.
const invoicePrompt = `Analyze the following invoice text and extract these fields in JSON format:
- invoice_number: The invoice number/ID
- invoice_date: The date when the invoice was issued (YYYY-MM-DD)
- due_date: The payment due date (YYYY-MM-DD)
- total_amount: The total amount to be paid (numeric value only)
- vat_amount: The VAT/tax amount (numeric value only)
- currency: The currency code (e.g., CZK, EUR, USD)
- supplier_name: The name of the supplier/seller
- supplier_tax_id: The tax ID of the supplier (ICO in Czech Republic)
- supplier_vat_id: The VAT ID of the supplier (DIC in Czech Republic)
- customer_name: The name of the customer/buyer
- customer_tax_id: The tax ID of the customer (ICO in Czech Republic)
- customer_vat_id: The VAT ID of the customer (DIC in Czech Republic)
- confidence_score: Your confidence in the extraction (0.0 to 1.0)

For each field, if you cannot find the information, set it to null.
Return only valid JSON without any additional text.

INVOICE TEXT:
`

// BuildPrompt appends the acquired document text to the instruction
// template.
func BuildPrompt(text string) string {
	return invoicePrompt + text
}
