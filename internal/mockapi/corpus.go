package mockapi

import "searchdeck/internal/domain"

// document is one canned entry the demo backend answers with
type document struct {
	slug    string
	title   string
	url     string
	snippet string
	kind    domain.ResultType
	score   float64
	tags    []string
}

var corpus = []document{
	{
		slug:    "ai-agents",
		title:   "Introduction to AI Agents and Multi-Agent Systems",
		url:     "https://example.com/ai-agents",
		snippet: "Latest developments in agent technology and how collaborative agents change search.",
		kind:    domain.TypeArticle,
		score:   0.95,
		tags:    []string{"ai", "agents"},
	},
	{
		slug:    "ml-algorithms",
		title:   "Machine Learning Algorithms: A Comprehensive Guide",
		url:     "https://example.com/ml-algorithms",
		snippet: "A guide to the learning algorithms behind ranking and result quality.",
		kind:    domain.TypeArticle,
		score:   0.87,
		tags:    []string{"ml", "guide"},
	},
	{
		slug:    "nlp-fundamentals",
		title:   "Natural Language Processing Fundamentals",
		url:     "https://example.com/nlp",
		snippet: "How language processing powers question answering and semantic matching.",
		kind:    domain.TypePaper,
		score:   0.82,
		tags:    []string{"nlp"},
	},
	{
		slug:    "future-search",
		title:   "The Future of Search Technology",
		url:     "https://example.com/future-search",
		snippet: "Neural search, vector databases and agentic workflows on the horizon.",
		kind:    domain.TypeNews,
		score:   0.78,
		tags:    []string{"trends"},
	},
	{
		slug:    "search-personalization",
		title:   "Personalization in Search Engines",
		url:     "https://example.com/search-personalization",
		snippet: "Using behavior and context signals to match results to intent.",
		kind:    domain.TypeVideo,
		score:   0.75,
		tags:    []string{"personalization"},
	},
}
