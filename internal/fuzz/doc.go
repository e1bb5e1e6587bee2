// Package fuzztests houses Go fuzz harnesses for the host-file pipeline
// (source -> lexer -> decl -> compose -> wgsl). They guard against panics,
// hangs and broken invariants on arbitrary inputs.
//
// Назначение: прогонять произвольные байты через лексер, разбор объявлений,
// композицию и проверку WGSL.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
