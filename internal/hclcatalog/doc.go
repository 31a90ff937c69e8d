// Package hclcatalog is the HCL implementation of catalog.Loader.
//
// A catalog file holds three kinds of labelled blocks:
//
//	resource "XSample" {
//	  function = get_sample
//	}
//
//	function "get_sample" {
//	  parameters = [X, Y, Seed, 5000]
//	  returns    = [XSample, YSample]
//	}
//
//	metafeature "MeanCategoricalAttributeEntropy" {
//	  function   = profile_distribution
//	  parameters = [CategoricalAttributeEntropies, 0]
//	}
//
// Inside `parameters`, bare identifiers are references to other catalog
// nodes and every other expression is a literal, so the two are told apart
// by their syntax rather than by a separate flag.
package hclcatalog
