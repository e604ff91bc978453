package categorizer

// DefaultBuckets are the built-in business buckets in matching order
var DefaultBuckets = []Bucket{
	{Name: "Compliance & Data", Keywords: []string{
		"compliance", "gdpr", "hipaa", "legal", "regulation", "audit", "data privacy", "security",
		"certification", "license", "permit", "tax", "paperwork", "documentation", "record keeping",
		"reporting", "sox", "pci", "data protection", "privacy policy", "terms of service", "liability",
		"insurance", "zoning", "permitting",
	}},
	{Name: "Automated Hiring", Keywords: []string{
		"hiring", "recruit", "recruiting", "job posting", "resume", "interview", "candidate", "talent",
		"employee", "employees", "onboarding", "staffing", "human resources", "hr", "payroll", "benefits",
		"hiring process", "recruitment", "headhunter", "staff", "workforce", "labor", "contractor",
		"job description", "hiring manager", "talent acquisition",
	}},
	{Name: "Workflow Inefficiency", Keywords: []string{
		"workflow", "process", "efficiency", "efficiencies", "manual", "automate", "automated", "automation",
		"repetitive", "time consuming", "bottleneck", "slow", "tedious", "streamline", "optimize",
		"optimization", "productivity", "task", "tasks", "integration", "integrations", "connecting",
		"connect", "sync", "synchronize", "data entry", "copy paste", "copying", "pasting",
	}},
	{Name: "Customer Management", Keywords: []string{
		"customer", "client", "clients", "relationship", "crm", "support", "communication", "email",
		"emails", "follow up", "follow-up", "lead", "leads", "sales pipeline", "retention", "satisfaction",
		"feedback", "review", "reviews", "referral", "referrals", "churn", "acquisition",
		"account management", "customer success", "support ticket", "help desk",
	}},
	{Name: "Financial Management", Keywords: []string{
		"invoice", "invoicing", "payment", "payments", "billing", "accounting", "budget", "budgeting",
		"expense", "expenses", "revenue", "profit", "cash flow", "bookkeeping", "finance", "financial",
		"cost", "costs", "pricing", "quote", "estimate", "taxes", "tax return", "bookkeeper", "quickbooks",
		"xero", "expense report", "reimbursement",
	}},
	{Name: "Project Management", Keywords: []string{
		"project", "projects", "deadline", "deadlines", "timeline", "timelines", "milestone",
		"task management", "team collaboration", "collaborate", "assign", "tracking", "progress", "kanban",
		"agile", "scrum", "sprint", "deliverable", "stakeholder", "stakeholders", "gantt",
		"resource allocation", "capacity planning", "workload", "prioritization", "roadmap", "planning",
		"scheduling", "calendar", "reminder", "reminders",
	}},
	{Name: "Marketing & Sales", Keywords: []string{
		"marketing", "advertising", "social media", "seo", "content", "lead generation", "conversion",
		"conversions", "campaign", "brand", "outreach", "cold call", "cold calling", "email marketing",
		"analytics", "metrics", "roi", "return on investment", "facebook", "instagram", "linkedin",
		"twitter", "tiktok", "youtube", "google ads", "marketing automation", "pipeline", "closing deals",
		"sales", "selling", "proposal", "proposals",
	}},
	{Name: "Inventory & Operations", Keywords: []string{
		"inventory", "stock", "supply chain", "logistics", "shipping", "warehouse", "order management",
		"procurement", "vendor", "supplier", "fulfillment", "delivery", "manufacturing", "production",
		"materials", "order fulfillment", "dropshipping", "ecommerce", "online store", "product catalog",
		"sku", "barcode", "qr code", "inventory management",
	}},
	{Name: "Technical & IT", Keywords: []string{
		"website", "websites", "domain", "hosting", "server", "servers", "api", "software", "tool", "tools",
		"database", "backup", "migration", "password", "passwords", "authentication", "cloud", "cyber",
		"technical issue", "bug", "bugs", "glitch", "website builder", "wordpress", "shopify",
		"domain name", "ssl", "dns", "redirect", "page speed", "mobile app", "ios", "android", "app", "apps",
		"software as a service", "saas", "subscription",
	}},
	{Name: "Real Estate & Property", Keywords: []string{
		"real estate", "property", "properties", "tenant", "tenants", "landlord", "rental", "rentals",
		"lease", "leasing", "mortgage", "commercial", "residential", "investment property", "flipping",
		"renovation", "remodel", "construction", "listings", "mls", "realtor", "broker",
		"real estate agent", "showings", "viewings",
	}},
	{Name: "Food & Hospitality", Keywords: []string{
		"restaurant", "restaurants", "food", "cafe", "café", "coffee", "catering", "menu",
		"online ordering", "takeout", "pickup", "reservations", "table management", "point of sale", "pos",
		"hospitality", "hotel", "hotels", "motel", "accommodation", "booking", "guest", "guests", "kitchen",
		"chef", "cooking", "recipe", "recipes", "food cost",
	}},
	{Name: "Health & Wellness", Keywords: []string{
		"health", "healthcare", "medical", "doctor", "clinic", "hospital", "patient", "patients",
		"wellness", "fitness", "gym", "workout", "nutrition", "diet", "supplement", "supplements",
		"therapy", "mental health", "telemedicine", "health insurance", "appointment",
		"electronic health records", "ehr", "emr", "prescription", "pharmacy",
	}},
	{Name: "Education & Training", Keywords: []string{
		"education", "learning", "course", "courses", "training", "tutorial", "tutorials", "class",
		"classes", "student", "students", "teacher", "teachers", "school", "schools", "university",
		"college", "curriculum", "syllabus", "assignment", "homework", "grading", "lms",
		"learning management", "elearning", "online course", "workshop", "webinar", "knowledge base",
		"help center",
	}},
	{Name: Fallback, Keywords: []string{
		"business", "businesses", "company", "companies", "startup", "startups", "entrepreneur",
		"entrepreneurs", "small business", "owner", "owners", "manager", "management", "operate",
		"operating", "running a business", "grow business", "scale business", "income",
	}},
}
