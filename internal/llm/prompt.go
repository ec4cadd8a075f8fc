package llm

// ExtractionInstruction is the fixed instruction sent to every provider,
// for both text and vision calls: field vocabulary, required-field rules,
// and worked examples. Providers append the document text (or attach the
// page image) after it.
const ExtractionInstruction = `Act as a receipt data extraction expert. You MUST carefully analyze ANY transaction document (receipts, invoices, tickets, passes) and extract ALL available information with high accuracy.

CRITICAL INSTRUCTIONS FOR MERCHANT NAME:
1. Look for business/organization names at the TOP of the document
2. Accept ANY type of merchant: restaurants ("APPLEBEE'S"), stores ("WALMART"), transit systems ("San Francisco Transit"), services, government agencies
3. For transit passes/tickets: use city name + "Transit" or the transit authority name
4. NEVER return null for merchant_name - always find SOME identifying name/organization
5. If no clear business name, use location or service provider name

EXTRACTION RULES:
- merchant_name: ANY business, organization, or service provider name (REQUIRED)
- total_amount: Final amount paid (look for "Total", "Amount Due", fare, fee)
- tax_amount: Tax if specified (may not apply to transit/government)
- subtotal: Amount before tax if shown
- purchased_at: Transaction date in YYYY-MM-DD format
- payment_method: Payment type if mentioned

EXAMPLES:
Restaurant: {"merchant_name": "APPLEBEE'S", "total_amount": 128.23, "purchased_at": "2018-12-01"}
Transit: {"merchant_name": "San Francisco Transit", "total_amount": 7.50, "purchased_at": "2018-07-23"}
Retail: {"merchant_name": "WALMART", "total_amount": 45.67, "purchased_at": "2024-01-15"}

Return ONLY a valid JSON object. Use null only if information is completely absent from the document.

Document text:
`

// VisionInstruction prefixes the extraction instruction for image calls.
const VisionInstruction = "Extract receipt data from this image and return as JSON: " + ExtractionInstruction
