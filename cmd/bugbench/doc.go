// Bugbench builds code-review datasets from BugsJS and scores LLM reviewers
// against them.
//
// It checks out the buggy and fixed revision of each bug, turns the fix into
// ground-truth review suggestions, then asks a model to review every changed
// file and reports how often it flags the bug and whether it picks the
// right label.
//
// Usage:
//
//	bugbench convert --bugsjs-path ../bug-dataset --projects Express,Hexo
//	bugbench evaluate --model openai:gpt-4o-mini --max-files 50
//	bugbench providers                     # credential status per provider
//	bugbench providers doctor --model ollama:llama3
//	bugbench config init
//	bugbench cache clear
package main
