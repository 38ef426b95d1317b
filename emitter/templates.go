package emitter

import "text/template"

const internalCall = "\t[MethodImpl(MethodImplOptions.InternalCall)]\n"

const preludeTemplate = `{{if .Banner}}// <auto-generated>
//     Generated by monobind {{.Banner}}. Do not edit.
// </auto-generated>

{{end}}using System;
using System.Runtime.CompilerServices;
using System.Runtime.InteropServices;

`

const classHeaderTemplate = "class {{.Name}}\n{\n" +
	"\tprivate IntPtr _nativeHandle;\n" +
	"\tpublic {{.Name}}(IntPtr nativeHandle) { _nativeHandle = nativeHandle; }\n\n"

const structHeaderTemplate = "[StructLayout(LayoutKind.Explicit)]\nstruct {{.Name}}\n{\n"

const footerText = "}\n\n"

const structFieldTemplate = "\t[FieldOffset({{.Offset}})] public {{.Type}} {{.Name}};\n\n"

const readonlyStructFieldTemplate = "\t[FieldOffset({{.Offset}})] private {{.Type}} _{{.Name}};\n" +
	"\tpublic {{.Type}} {{.Name}} => _{{.Name}};\n\n"

const classFieldTemplate = internalCall +
	"\tprivate static extern {{.Type}} {{.Getter}}(IntPtr _self, uint _offset);\n" +
	internalCall +
	"\tprivate static extern void {{.Setter}}(IntPtr _self, uint _offset, {{.Type}} _value);\n" +
	"\tpublic {{.Type}} {{.Name}} { get => {{.Getter}}(_nativeHandle, {{.Offset}}); set => {{.Setter}}(_nativeHandle, {{.Offset}}, value); }\n\n"

const readonlyClassFieldTemplate = internalCall +
	"\tprivate static extern {{.Type}} {{.Getter}}(IntPtr _self, uint _offset);\n" +
	"\tpublic {{.Type}} {{.Name}} => {{.Getter}}(_nativeHandle, {{.Offset}});\n\n"

const classPropertyTemplate = internalCall +
	"\tprivate static extern {{.Type}} {{.Getter}}(IntPtr _self);\n" +
	internalCall +
	"\tprivate static extern void {{.Setter}}(IntPtr _self, {{.Type}} _value);\n" +
	"\tpublic {{.Type}} {{.Name}} { get => {{.Getter}}(_nativeHandle); set => {{.Setter}}(_nativeHandle, value); }\n\n"

const readonlyClassPropertyTemplate = internalCall +
	"\tprivate static extern {{.Type}} {{.Getter}}(IntPtr _self);\n" +
	"\tpublic {{.Type}} {{.Name}} => {{.Getter}}(_nativeHandle);\n\n"

const structPropertyTemplate = internalCall +
	"\tprivate static extern {{.Type}} {{.Getter}}(ref {{.Owner}} _self);\n" +
	internalCall +
	"\tprivate static extern void {{.Setter}}(ref {{.Owner}} _self, {{.Type}} _value);\n" +
	"\tpublic {{.Type}} {{.Name}} { get => {{.Getter}}(ref this); set => {{.Setter}}(ref this, value); }\n\n"

const readonlyStructPropertyTemplate = internalCall +
	"\tprivate static extern {{.Type}} {{.Getter}}(ref {{.Owner}} _self);\n" +
	"\tpublic {{.Type}} {{.Name}} => {{.Getter}}(ref this);\n\n"

var (
	preludeTmpl      = template.Must(template.New("prelude").Parse(preludeTemplate))
	classHeaderTmpl  = template.Must(template.New("class").Parse(classHeaderTemplate))
	structHeaderTmpl = template.Must(template.New("struct").Parse(structHeaderTemplate))

	memberTemplates = map[MemberKind]*template.Template{
		MemberStructField:            template.Must(template.New(string(MemberStructField)).Parse(structFieldTemplate)),
		MemberReadonlyStructField:    template.Must(template.New(string(MemberReadonlyStructField)).Parse(readonlyStructFieldTemplate)),
		MemberClassField:             template.Must(template.New(string(MemberClassField)).Parse(classFieldTemplate)),
		MemberReadonlyClassField:     template.Must(template.New(string(MemberReadonlyClassField)).Parse(readonlyClassFieldTemplate)),
		MemberClassProperty:          template.Must(template.New(string(MemberClassProperty)).Parse(classPropertyTemplate)),
		MemberReadonlyClassProperty:  template.Must(template.New(string(MemberReadonlyClassProperty)).Parse(readonlyClassPropertyTemplate)),
		MemberStructProperty:         template.Must(template.New(string(MemberStructProperty)).Parse(structPropertyTemplate)),
		MemberReadonlyStructProperty: template.Must(template.New(string(MemberReadonlyStructProperty)).Parse(readonlyStructPropertyTemplate)),
	}
)
