/*
Package joshua is the core of a syntax-based statistical machine-translation
decoder. Given a source sentence (or a word lattice) and a set of synchronous
context-free grammars, it builds a translation hypergraph by CKY-style
bottom-up chart parsing with cube pruning. Package structure is as follows:

■ corpus: Package corpus holds the vocabulary, a bijection between symbol
strings and integer ids.

■ lattice: Package lattice models the integerized input as a directed acyclic
word lattice, including a reader for the Python lattice format (PLF).

■ grammar: Package grammar indexes synchronous rules through a trie and reads
grammars from their textual form.

■ decoder: Package decoder and its sub-packages contain the chart parser
proper — cells, dot chart, cube pruning, unary closure — together with the
feature-scoring interfaces and the hypergraph it produces.

The base package contains data types which are used throughout all the other
packages.
*/
package joshua
